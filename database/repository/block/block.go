package blockRepo

import (
	"context"
	"fmt"
	"time"

	"linguahub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// BlockRepository reads block relations between users.
type BlockRepository interface {
	// ActiveCounterparts returns the ids of every user in an active block
	// relation with userID, whichever side created the block.
	ActiveCounterparts(ctx context.Context, userID string) ([]string, error)
}

// MongoBlockRepo implements BlockRepository using MongoDB.
type MongoBlockRepo struct {
	coll *mongo.Collection
}

func NewMongoBlockRepo(db *mongo.Database) BlockRepository {
	return &MongoBlockRepo{coll: db.Collection("user_blocks")}
}

func (r *MongoBlockRepo) ActiveCounterparts(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"blockerId": userID},
			bson.M{"blockedId": userID},
		},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var blocks []models.UserBlock
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode blocks: %w", err)
	}
	return Counterparts(userID, blocks), nil
}

// Counterparts returns the other side of each active block involving userID.
func Counterparts(userID string, blocks []models.UserBlock) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range blocks {
		if !b.IsActive {
			continue
		}
		var other string
		switch userID {
		case b.BlockerID:
			other = b.BlockedID
		case b.BlockedID:
			other = b.BlockerID
		default:
			continue
		}
		if other != "" && !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids
}
