package interpreterRepo

import (
	"context"
	"sort"
	"sync"

	"linguahub/models"
)

// MemoryInterpreterRepo is a CandidateStore over an in-process slice. It
// evaluates the Match side of each predicate.
type MemoryInterpreterRepo struct {
	mu           sync.RWMutex
	interpreters []models.Interpreter
}

func NewMemoryInterpreterRepo(interpreters ...models.Interpreter) *MemoryInterpreterRepo {
	return &MemoryInterpreterRepo{interpreters: interpreters}
}

// Add appends interpreters to the store.
func (r *MemoryInterpreterRepo) Add(interpreters ...models.Interpreter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interpreters = append(r.interpreters, interpreters...)
}

func (r *MemoryInterpreterRepo) Count(ctx context.Context, preds []Predicate) (int64, error) {
	ids, err := r.DistinctIDs(ctx, preds)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (r *MemoryInterpreterRepo) DistinctIDs(ctx context.Context, preds []Predicate) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	ids := []string{}
	for i := range r.interpreters {
		in := &r.interpreters[i]
		if seen[in.ID] || !matchesAll(in, preds) {
			continue
		}
		seen[in.ID] = true
		ids = append(ids, in.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func matchesAll(in *models.Interpreter, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Match(in) {
			return false
		}
	}
	return true
}
