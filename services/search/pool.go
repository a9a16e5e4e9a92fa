package search

import (
	"context"

	interpreterRepo "linguahub/database/repository/interpreter"
)

// Pool is a narrowable set of interpreter candidates. It is an immutable
// persistent list of predicates: Where shares the parent's predicates and
// never modifies them, so any earlier Pool value stays a valid branch point.
type Pool struct {
	store interpreterRepo.CandidateStore
	tail  *predicateNode
}

type predicateNode struct {
	pred   Predicate
	parent *predicateNode
	depth  int
}

// BasePool returns the pool of active, non-deleted interpreters.
func BasePool(store interpreterRepo.CandidateStore) Pool {
	return Pool{store: store}.Where(ActiveInterpreters())
}

// Where returns a pool further narrowed by preds.
func (p Pool) Where(preds ...Predicate) Pool {
	tail := p.tail
	for _, pred := range preds {
		depth := 1
		if tail != nil {
			depth = tail.depth + 1
		}
		tail = &predicateNode{pred: pred, parent: tail, depth: depth}
	}
	return Pool{store: p.store, tail: tail}
}

// Clone returns a branch point. Pools are values over immutable nodes, so the
// copy is already isolated from anything applied to the original afterwards.
func (p Pool) Clone() Pool {
	return p
}

// Len is the number of predicates applied.
func (p Pool) Len() int {
	if p.tail == nil {
		return 0
	}
	return p.tail.depth
}

// Predicates returns the predicates in the order they were applied.
func (p Pool) Predicates() []Predicate {
	preds := make([]Predicate, p.Len())
	for n := p.tail; n != nil; n = n.parent {
		preds[n.depth-1] = n.pred
	}
	return preds
}

// Names lists the predicate names in application order.
func (p Pool) Names() []string {
	preds := p.Predicates()
	names := make([]string, len(preds))
	for i, pred := range preds {
		names[i] = pred.Name
	}
	return names
}

// Count returns the number of candidates without materializing them.
func (p Pool) Count(ctx context.Context) (int64, error) {
	return p.store.Count(ctx, p.Predicates())
}

// MaterializeIDs returns the distinct candidate role ids.
func (p Pool) MaterializeIDs(ctx context.Context) ([]string, error) {
	return p.store.DistinctIDs(ctx, p.Predicates())
}
