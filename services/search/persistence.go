package search

import (
	"context"
	"errors"
	"fmt"

	"linguahub/models"

	"go.uber.org/zap"
)

// ErrResultNotSaved marks a run whose write-back failed.
var ErrResultNotSaved = errors.New("search result not saved")

// ResultWriter stores the search state of an order or order group.
type ResultWriter interface {
	UpdateSearchExecution(ctx context.Context, orderID string, exec models.SearchExecution) error
	UpdateGroupSearchExecution(ctx context.Context, groupID string, exec models.SearchExecution) error
}

// ResultPersistence writes a run's result back and releases its dedup key.
type ResultPersistence struct {
	Writer ResultWriter
	Lock   RunLock
	Logger *zap.Logger
}

// Persist performs the run's single update on the target entity, then
// deletes the run's cache key. The key is deleted even when the write fails.
func (p *ResultPersistence) Persist(ctx context.Context, sc SearchContext, exec models.SearchExecution) error {
	exec.MatchedInterpreterIDs = uniqueIDs(exec.MatchedInterpreterIDs)

	var err error
	switch t := sc.Target.(type) {
	case SingleOrder:
		err = p.Writer.UpdateSearchExecution(ctx, t.Order.ID, exec)
	case OrderGroup:
		err = p.Writer.UpdateGroupSearchExecution(ctx, t.Group.ID, exec)
	default:
		err = fmt.Errorf("unknown target type %T", t)
	}
	p.Release(ctx, sc.CacheKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResultNotSaved, err)
	}
	return nil
}

// Release deletes the run's cache key.
func (p *ResultPersistence) Release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := p.Lock.Release(ctx, key); err != nil {
		p.Logger.Error("failed to delete search cache key", zap.String("key", key), zap.Error(err))
	}
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
