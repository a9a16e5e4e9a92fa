package orderRepo

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

// MongoOrderRepo implements OrderRepository using MongoDB.
type MongoOrderRepo struct {
	orderColl *mongo.Collection
	groupColl *mongo.Collection
}

func NewMongoOrderRepo(db *mongo.Database) OrderRepository {
	return &MongoOrderRepo{
		orderColl: db.Collection("appointment_orders"),
		groupColl: db.Collection("appointment_order_groups"),
	}
}

func (r *MongoOrderRepo) GetByID(ctx context.Context, id string) (*models.AppointmentOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var order models.AppointmentOrder
	if err := r.orderColl.FindOne(ctx, bson.M{"id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order with id %s: %w", id, err)
	}
	return &order, nil
}

func (r *MongoOrderRepo) GetGroupByID(ctx context.Context, id string) (*models.AppointmentOrderGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var group models.AppointmentOrderGroup
	if err := r.groupColl.FindOne(ctx, bson.M{"id": id}).Decode(&group); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to fetch order group with id %s: %w", id, err)
	}
	return &group, nil
}

func (r *MongoOrderRepo) UpdateSearchExecution(ctx context.Context, orderID string, exec models.SearchExecution) error {
	return updateSearch(ctx, r.orderColl, orderID, exec)
}

func (r *MongoOrderRepo) UpdateGroupSearchExecution(ctx context.Context, groupID string, exec models.SearchExecution) error {
	return updateSearch(ctx, r.groupColl, groupID, exec)
}

func updateSearch(ctx context.Context, coll *mongo.Collection, id string, exec models.SearchExecution) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if exec.MatchedInterpreterIDs == nil {
		exec.MatchedInterpreterIDs = []string{}
	}
	update := bson.M{"$set": bson.M{
		"search":    exec,
		"updatedAt": time.Now(),
	}}
	result, err := coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update search state of %s %s: %w", coll.Name(), id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s %s not found", coll.Name(), id)
	}
	return nil
}

func (r *MongoOrderRepo) FindDueSearches(ctx context.Context, now time.Time, limit int64) ([]DueSearch, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	due := bson.M{
		"search.isSearchNeeded": true,
		"$or": bson.A{
			bson.M{"search.timeToRestart": nil},
			bson.M{"search.timeToRestart": bson.M{"$lte": now}},
		},
	}
	opts := options.Find().
		SetProjection(bson.M{"id": 1}).
		SetSort(bson.D{{Key: "search.timeToRestart", Value: 1}}).
		SetLimit(limit)

	var result []DueSearch

	groupCursor, err := r.groupColl.Find(ctx, due, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query due order groups: %w", err)
	}
	var groups []struct {
		ID string `bson:"id"`
	}
	if err := groupCursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode due order groups: %w", err)
	}
	for _, g := range groups {
		result = append(result, DueSearch{OrderGroupID: g.ID})
	}

	orderFilter := bson.M{}
	for k, v := range due {
		orderFilter[k] = v
	}
	orderFilter["orderGroupId"] = bson.M{"$in": bson.A{nil, ""}}
	orderCursor, err := r.orderColl.Find(ctx, orderFilter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query due orders: %w", err)
	}
	var orders []struct {
		ID string `bson:"id"`
	}
	if err := orderCursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode due orders: %w", err)
	}
	for _, o := range orders {
		result = append(result, DueSearch{OrderID: o.ID})
	}
	return result, nil
}
