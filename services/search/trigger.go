package search

import (
	"context"
	"fmt"
	"time"

	orderRepo "linguahub/database/repository/order"
	"linguahub/models"

	"go.uber.org/zap"
)

// RunOptions describe why a run was requested.
type RunOptions struct {
	// Silent runs neither escalate nor notify the client.
	Silent bool
	// Manual runs are requested by an operator and escalate on the first
	// attempt.
	Manual bool
	// IgnoreAvailability matches interpreters regardless of their booked
	// appointments, e.g. when an operator reassigns a job by hand.
	IgnoreAvailability bool
}

// Trigger loads an order or group, takes the run lock and starts the search.
type Trigger struct {
	Orders  orderRepo.OrderRepository
	Engine  SearchEngine
	Lock    RunLock
	LockTTL time.Duration
	Logger  *zap.Logger
}

// policy derives the context flags. A first scheduled attempt defers quietly
// so the sweep can retry; later attempts escalate.
func policy(prev models.SearchExecution, opts RunOptions) (setRedFlags, sendNotifications bool) {
	if opts.Silent {
		return false, false
	}
	return opts.Manual || prev.IsFirstSearchCompleted, true
}

func (t *Trigger) RunForOrder(ctx context.Context, orderID string, opts RunOptions) (Outcome, error) {
	order, err := t.Orders.GetByID(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	redFlags, notify := policy(order.Search, opts)
	return t.start(ctx, SearchContext{
		Target:             SingleOrder{Order: order},
		CacheKey:           OrderCacheKey(order.ID),
		SetRedFlags:        redFlags,
		SendNotifications:  notify,
		IgnoreAvailability: opts.IgnoreAvailability,
	})
}

// RunForGroup searches for a whole order group. The group's first order
// supplies the criteria.
func (t *Trigger) RunForGroup(ctx context.Context, groupID string, opts RunOptions) (Outcome, error) {
	group, err := t.Orders.GetGroupByID(ctx, groupID)
	if err != nil {
		return "", fmt.Errorf("failed to load order group %s: %w", groupID, err)
	}
	if len(group.OrderIDs) == 0 {
		return "", newSearchError(CodeEmptyGroup, fmt.Sprintf("order group %s has no orders", groupID))
	}
	order, err := t.Orders.GetByID(ctx, group.OrderIDs[0])
	if err != nil {
		return "", fmt.Errorf("failed to load order %s of group %s: %w", group.OrderIDs[0], groupID, err)
	}
	redFlags, notify := policy(group.Search, opts)
	return t.start(ctx, SearchContext{
		Target:             OrderGroup{Order: order, Group: group},
		CacheKey:           GroupCacheKey(group.ID),
		SetRedFlags:        redFlags,
		SendNotifications:  notify,
		IgnoreAvailability: opts.IgnoreAvailability,
	})
}

func (t *Trigger) start(ctx context.Context, sc SearchContext) (Outcome, error) {
	acquired, err := t.Lock.Acquire(ctx, sc.CacheKey, t.LockTTL)
	if err != nil {
		return "", fmt.Errorf("failed to acquire search lock %s: %w", sc.CacheKey, err)
	}
	if !acquired {
		t.Logger.Debug("search run already in flight", zap.String("cacheKey", sc.CacheKey))
		return "", ErrRunInFlight
	}
	return t.Engine.RunSearch(ctx, sc)
}
