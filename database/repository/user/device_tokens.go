package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNoDeviceToken = errors.New("no FCM token registered")

// DeviceTokenRepository resolves push targets.
type DeviceTokenRepository interface {
	// UserToken returns the FCM token of a platform user (client or admin).
	UserToken(ctx context.Context, userID string) (string, error)
	// InterpreterToken returns the FCM token of an interpreter role.
	InterpreterToken(ctx context.Context, roleID string) (string, error)
}

// MongoDeviceTokenRepo implements DeviceTokenRepository using MongoDB.
type MongoDeviceTokenRepo struct {
	usersColl        *mongo.Collection
	interpretersColl *mongo.Collection
}

func NewMongoDeviceTokenRepo(db *mongo.Database) DeviceTokenRepository {
	return &MongoDeviceTokenRepo{
		usersColl:        db.Collection("users"),
		interpretersColl: db.Collection("interpreters"),
	}
}

func (r *MongoDeviceTokenRepo) UserToken(ctx context.Context, userID string) (string, error) {
	return fetchToken(ctx, r.usersColl, userID)
}

func (r *MongoDeviceTokenRepo) InterpreterToken(ctx context.Context, roleID string) (string, error) {
	return fetchToken(ctx, r.interpretersColl, roleID)
}

func fetchToken(ctx context.Context, coll *mongo.Collection, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc struct {
		FCMToken string `bson:"fcmToken"`
	}
	opts := options.FindOne().SetProjection(bson.M{"fcmToken": 1})
	if err := coll.FindOne(ctx, bson.M{"id": id}, opts).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to fetch %s %s: %w", coll.Name(), id, err)
	}
	if doc.FCMToken == "" {
		return "", fmt.Errorf("%s %s: %w", coll.Name(), id, ErrNoDeviceToken)
	}
	return doc.FCMToken, nil
}
