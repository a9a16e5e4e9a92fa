package interpreterRepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInterpreterRepo implements CandidateStore over the "interpreters" collection.
type MongoInterpreterRepo struct {
	coll *mongo.Collection
}

// NewMongoInterpreterRepo creates a candidate store backed by MongoDB.
func NewMongoInterpreterRepo(db *mongo.Database) *MongoInterpreterRepo {
	return &MongoInterpreterRepo{coll: db.Collection("interpreters")}
}

func (r *MongoInterpreterRepo) Count(ctx context.Context, preds []Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	n, err := r.coll.CountDocuments(ctx, FilterOf(preds))
	if err != nil {
		return 0, fmt.Errorf("failed to count interpreters: %w", err)
	}
	return n, nil
}

func (r *MongoInterpreterRepo) DistinctIDs(ctx context.Context, preds []Predicate) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	raw, err := r.coll.Distinct(ctx, "id", FilterOf(preds))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch distinct interpreter ids: %w", err)
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		id, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected interpreter id type %T", v)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// EnsureIndexes creates the indexes the search predicates rely on.
func (r *MongoInterpreterRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{
			{Key: "languagePairs.from", Value: 1},
			{Key: "languagePairs.to", Value: 1},
			{Key: "roleName", Value: 1},
		}},
		{Keys: bson.D{{Key: "companyName", Value: 1}}},
		// Only live profiles are ever searched.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "isTemporaryBlocked", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(bson.M{
				"isActive": true,
			}),
		},
		{Keys: bson.D{{Key: "engagements.status", Value: 1}, {Key: "engagements.start", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create interpreter indexes: %w", err)
	}
	return nil
}
