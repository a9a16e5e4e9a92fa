package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeSearchRun = "search:run"
	QueueSearch   = "search"
)

// SearchRunPayload asks the worker to search for one order or one order
// group. Exactly one of OrderID and OrderGroupID is set.
type SearchRunPayload struct {
	OrderID            string `json:"orderId,omitempty"`
	OrderGroupID       string `json:"orderGroupId,omitempty"`
	Silent             bool   `json:"silent,omitempty"`
	Manual             bool   `json:"manual,omitempty"`
	IgnoreAvailability bool   `json:"ignoreAvailability,omitempty"`
}

func (p SearchRunPayload) Validate() error {
	if (p.OrderID == "") == (p.OrderGroupID == "") {
		return errors.New("search task needs exactly one of orderId and orderGroupId")
	}
	return nil
}

// NewSearchRunTask builds the task. Identical payloads enqueued within
// uniqueFor are dropped by asynq.
func NewSearchRunTask(payload SearchRunPayload, uniqueFor time.Duration) (*asynq.Task, []asynq.Option, error) {
	if err := payload.Validate(); err != nil {
		return nil, nil, err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSearchRun, b)
	opts := []asynq.Option{
		asynq.Queue(QueueSearch),
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
	}
	if uniqueFor > 0 {
		opts = append(opts, asynq.Unique(uniqueFor))
	}
	return task, opts, nil
}

// ParseSearchRunPayload decodes and validates a task payload.
func ParseSearchRunPayload(task *asynq.Task) (SearchRunPayload, error) {
	var p SearchRunPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid search task payload: %w", err)
	}
	return p, p.Validate()
}

// Enqueuer is the part of the asynq client the producers use.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// SearchQueue enqueues search runs.
type SearchQueue struct {
	client    Enqueuer
	uniqueFor time.Duration
}

func NewSearchQueue(client Enqueuer, uniqueFor time.Duration) *SearchQueue {
	return &SearchQueue{client: client, uniqueFor: uniqueFor}
}

// Enqueue schedules a run. It reports false without error when an identical
// task is already queued.
func (q *SearchQueue) Enqueue(ctx context.Context, payload SearchRunPayload) (bool, error) {
	task, opts, err := NewSearchRunTask(payload, q.uniqueFor)
	if err != nil {
		return false, err
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return false, nil
		}
		return false, fmt.Errorf("failed to enqueue search task: %w", err)
	}
	return true, nil
}
