package adminRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linguahub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAdminRepo implements AdminInfoRepository and AdminDirectory.
type MongoAdminRepo struct {
	infoColl  *mongo.Collection
	usersColl *mongo.Collection
}

func NewMongoAdminRepo(db *mongo.Database) *MongoAdminRepo {
	return &MongoAdminRepo{
		infoColl:  db.Collection("appointment_admin_info"),
		usersColl: db.Collection("users"),
	}
}

func (r *MongoAdminRepo) GetByAppointmentID(ctx context.Context, appointmentID string) (*models.AdminInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var info models.AdminInfo
	if err := r.infoColl.FindOne(ctx, bson.M{"appointmentId": appointmentID}).Decode(&info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAdminInfoNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin info for appointment %s: %w", appointmentID, err)
	}
	return &info, nil
}

func (r *MongoAdminRepo) SetRedFlag(ctx context.Context, adminInfoID, message string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"isRedFlagEnabled": true,
		"redFlagMessage":   message,
		"updatedAt":        time.Now(),
	}}
	result, err := r.infoColl.UpdateOne(ctx, bson.M{"id": adminInfoID}, update)
	if err != nil {
		return fmt.Errorf("failed to set red flag on admin info %s: %w", adminInfoID, err)
	}
	if result.MatchedCount == 0 {
		return ErrAdminInfoNotFound
	}
	return nil
}

func (r *MongoAdminRepo) ListAdminIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := options.Find().SetProjection(bson.M{"id": 1})
	cursor, err := r.usersColl.Find(ctx, bson.M{"roles": models.RoleSuperAdmin, "isActive": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var u struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("failed to decode admin: %w", err)
		}
		ids = append(ids, u.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}
