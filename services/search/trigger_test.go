package search

import (
	"context"
	"testing"
	"time"

	orderRepo "linguahub/database/repository/order"
	"linguahub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingEngine struct {
	contexts []SearchContext
}

func (e *recordingEngine) RunSearch(_ context.Context, sc SearchContext) (Outcome, error) {
	e.contexts = append(e.contexts, sc)
	return OutcomeMatched, nil
}

func newTrigger(orders *fakeOrders, lock *fakeLock, engine SearchEngine) *Trigger {
	return &Trigger{Orders: orders, Engine: engine, Lock: lock, LockTTL: time.Minute, Logger: zap.NewNop()}
}

func TestPolicy(t *testing.T) {
	first := models.SearchExecution{}
	retry := models.SearchExecution{IsFirstSearchCompleted: true}

	tests := []struct {
		name         string
		prev         models.SearchExecution
		opts         RunOptions
		redFlags     bool
		sendNotifies bool
	}{
		{"first scheduled attempt defers", first, RunOptions{}, false, true},
		{"retry escalates", retry, RunOptions{}, true, true},
		{"manual escalates at once", first, RunOptions{Manual: true}, true, true},
		{"silent never escalates", retry, RunOptions{Silent: true, Manual: true}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redFlags, notify := policy(tt.prev, tt.opts)
			assert.Equal(t, tt.redFlags, redFlags)
			assert.Equal(t, tt.sendNotifies, notify)
		})
	}
}

func TestRunForOrder(t *testing.T) {
	orders := newFakeOrders()
	orders.orders["order-1"] = newOrder()
	engine := &recordingEngine{}
	lock := newFakeLock()

	outcome, err := newTrigger(orders, lock, engine).RunForOrder(context.Background(), "order-1", RunOptions{Manual: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeMatched, outcome)

	require.Len(t, engine.contexts, 1)
	sc := engine.contexts[0]
	assert.Equal(t, "search:order:order-1", sc.CacheKey)
	assert.True(t, sc.SetRedFlags)
	assert.IsType(t, SingleOrder{}, sc.Target)
	assert.True(t, lock.held[sc.CacheKey], "the engine releases the key, not the trigger")
}

func TestRunForOrderInFlight(t *testing.T) {
	orders := newFakeOrders()
	orders.orders["order-1"] = newOrder()
	lock := newFakeLock()
	lock.held[OrderCacheKey("order-1")] = true
	engine := &recordingEngine{}

	_, err := newTrigger(orders, lock, engine).RunForOrder(context.Background(), "order-1", RunOptions{})
	assert.True(t, IsRunInFlight(err))
	assert.Empty(t, engine.contexts)
}

func TestRunForOrderNotFound(t *testing.T) {
	_, err := newTrigger(newFakeOrders(), newFakeLock(), &recordingEngine{}).RunForOrder(context.Background(), "nope", RunOptions{})
	assert.ErrorIs(t, err, orderRepo.ErrOrderNotFound)
}

func TestRunForGroup(t *testing.T) {
	orders := newFakeOrders()
	orders.orders["order-1"] = newOrder()
	orders.groups["group-1"] = &models.AppointmentOrderGroup{ID: "group-1", OrderIDs: []string{"order-1", "order-2"}}
	orders.groups["empty"] = &models.AppointmentOrderGroup{ID: "empty"}
	engine := &recordingEngine{}
	trigger := newTrigger(orders, newFakeLock(), engine)

	_, err := trigger.RunForGroup(context.Background(), "group-1", RunOptions{})
	require.NoError(t, err)
	require.Len(t, engine.contexts, 1)
	target, ok := engine.contexts[0].Target.(OrderGroup)
	require.True(t, ok)
	assert.Equal(t, "order-1", target.Order.ID)
	assert.Equal(t, "search:group:group-1", engine.contexts[0].CacheKey)

	_, err = trigger.RunForGroup(context.Background(), "empty", RunOptions{})
	var se *SearchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeEmptyGroup, se.Code)
}

func TestRunPassesIgnoreAvailability(t *testing.T) {
	orders := newFakeOrders()
	orders.orders["order-1"] = newOrder()
	orders.groups["group-1"] = &models.AppointmentOrderGroup{ID: "group-1", OrderIDs: []string{"order-1"}}
	engine := &recordingEngine{}
	trigger := newTrigger(orders, newFakeLock(), engine)
	opts := RunOptions{Manual: true, IgnoreAvailability: true}

	_, err := trigger.RunForOrder(context.Background(), "order-1", opts)
	require.NoError(t, err)
	_, err = trigger.RunForGroup(context.Background(), "group-1", opts)
	require.NoError(t, err)

	require.Len(t, engine.contexts, 2)
	for _, sc := range engine.contexts {
		assert.True(t, sc.IgnoreAvailability, sc.CacheKey)
	}

	_, err = trigger.RunForOrder(context.Background(), "order-1", RunOptions{})
	assert.True(t, IsRunInFlight(err), "recording engine never releases the key")
}

// Trigger and engine together: the key is held during the run and gone after.
func TestTriggerReleasesLockAfterRun(t *testing.T) {
	h := newHarness(t, newInterpreter("i1"))
	h.orders.orders["order-1"] = newOrder()
	trigger := newTrigger(h.orders, h.lock, h.engine)

	outcome, err := trigger.RunForOrder(context.Background(), "order-1", RunOptions{})
	require.NoError(t, err)
	h.engine.Invitations.Wait()

	assert.Equal(t, OutcomeMatched, outcome)
	assert.Empty(t, h.lock.held)

	_, err = trigger.RunForOrder(context.Background(), "order-1", RunOptions{})
	assert.NoError(t, err, "a finished run does not block the next one")
}
