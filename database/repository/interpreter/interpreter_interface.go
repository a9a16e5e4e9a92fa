package interpreterRepo

import (
	"context"

	"linguahub/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Predicate narrows the interpreter candidate set. Filter is the MongoDB
// rendering; Match is the same condition evaluated in process. Both must agree.
type Predicate struct {
	Name   string
	Filter bson.D
	Match  func(*models.Interpreter) bool
}

// CandidateStore is the read-only store of interpreter candidates. The
// predicates passed to each call are combined with AND.
type CandidateStore interface {
	// Count returns how many interpreters satisfy every predicate.
	Count(ctx context.Context, preds []Predicate) (int64, error)
	// DistinctIDs returns the distinct role ids of the interpreters satisfying
	// every predicate, in ascending order.
	DistinctIDs(ctx context.Context, preds []Predicate) ([]string, error)
}

// FilterOf renders a predicate list as one MongoDB filter document.
func FilterOf(preds []Predicate) bson.D {
	if len(preds) == 0 {
		return bson.D{}
	}
	clauses := make(bson.A, 0, len(preds))
	for _, p := range preds {
		clauses = append(clauses, p.Filter)
	}
	return bson.D{{Key: "$and", Value: clauses}}
}
