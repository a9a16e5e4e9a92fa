package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	orderRepo "linguahub/database/repository/order"
	"linguahub/services/search"
	"linguahub/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	orderID, groupID string
	opts             search.RunOptions
}

type fakeRunner struct {
	calls   []call
	outcome search.Outcome
	err     error
}

func (f *fakeRunner) RunForOrder(_ context.Context, orderID string, opts search.RunOptions) (search.Outcome, error) {
	f.calls = append(f.calls, call{orderID: orderID, opts: opts})
	if f.outcome != "" {
		return f.outcome, f.err
	}
	return search.OutcomeMatched, f.err
}

func (f *fakeRunner) RunForGroup(_ context.Context, groupID string, opts search.RunOptions) (search.Outcome, error) {
	f.calls = append(f.calls, call{groupID: groupID, opts: opts})
	return search.OutcomeDeferred, f.err
}

func newTask(t *testing.T, p tasks.SearchRunPayload) *asynq.Task {
	t.Helper()
	task, _, err := tasks.NewSearchRunTask(p, 0)
	require.NoError(t, err)
	return task
}

func TestHandleSearchRunTask(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{}
	handler := HandleSearchRunTask(runner, zap.NewNop())
	require.NoError(t, handler(ctx, newTask(t, tasks.SearchRunPayload{OrderID: "o1", Manual: true})))
	require.NoError(t, handler(ctx, newTask(t, tasks.SearchRunPayload{OrderGroupID: "g1", Silent: true})))
	require.NoError(t, handler(ctx, newTask(t, tasks.SearchRunPayload{OrderID: "o2", Manual: true, IgnoreAvailability: true})))
	assert.Equal(t, []call{
		{orderID: "o1", opts: search.RunOptions{Manual: true}},
		{groupID: "g1", opts: search.RunOptions{Silent: true}},
		{orderID: "o2", opts: search.RunOptions{Manual: true, IgnoreAvailability: true}},
	}, runner.calls)

	notSaved := fmt.Errorf("%w: %w", search.ErrResultNotSaved, errors.New("mongo down"))
	tests := []struct {
		name      string
		outcome   search.Outcome
		err       error
		wantErr   bool
		skipRetry bool
	}{
		{"in flight is dropped", "", search.ErrRunInFlight, false, false},
		{"missing order is not retried", "", orderRepo.ErrOrderNotFound, true, true},
		{"store failure is retried", "", errors.New("mongo down"), true, false},
		{"unsaved match is retried", search.OutcomeMatched, notSaved, true, false},
		{"unsaved escalation is not retried", search.OutcomeEscalated, notSaved, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := HandleSearchRunTask(&fakeRunner{outcome: tt.outcome, err: tt.err}, zap.NewNop())
			err := handler(ctx, newTask(t, tasks.SearchRunPayload{OrderID: "o1"}))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}

	err := handler(ctx, asynq.NewTask(tasks.TypeSearchRun, []byte(`{}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type fakeDue struct {
	orderRepo.OrderRepository
	due []orderRepo.DueSearch
	err error
}

func (f *fakeDue) FindDueSearches(context.Context, time.Time, int64) ([]orderRepo.DueSearch, error) {
	return f.due, f.err
}

type fakeQueue struct {
	queued []tasks.SearchRunPayload
	failOn string
}

func (f *fakeQueue) Enqueue(_ context.Context, p tasks.SearchRunPayload) (bool, error) {
	if p.OrderID != "" && p.OrderID == f.failOn {
		return false, errors.New("redis down")
	}
	for _, q := range f.queued {
		if q == p {
			return false, nil
		}
	}
	f.queued = append(f.queued, p)
	return true, nil
}

func TestSweep(t *testing.T) {
	orders := &fakeDue{due: []orderRepo.DueSearch{
		{OrderID: "o1"},
		{OrderGroupID: "g1"},
		{OrderID: "o2"},
		{OrderID: "o1"},
	}}
	queue := &fakeQueue{failOn: "o2"}
	s := NewSearchSweeper(orders, queue, zap.NewNop(), "@every 1m", 100)

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []tasks.SearchRunPayload{{OrderID: "o1"}, {OrderGroupID: "g1"}}, queue.queued)

	orders.err = errors.New("mongo down")
	_, err = s.Sweep(context.Background())
	assert.Error(t, err)
}

func TestSweeperRejectsBadSpec(t *testing.T) {
	s := NewSearchSweeper(&fakeDue{}, &fakeQueue{}, zap.NewNop(), "not a spec", 10)
	assert.Error(t, s.Start())
}
