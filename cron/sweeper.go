package cron

import (
	"context"
	"time"

	orderRepo "linguahub/database/repository/order"
	"linguahub/services/tasks"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SearchEnqueuer queues search runs. *tasks.SearchQueue implements it.
type SearchEnqueuer interface {
	Enqueue(ctx context.Context, payload tasks.SearchRunPayload) (bool, error)
}

// SearchSweeper periodically queues a run for every order or group whose
// search is needed and whose restart time has passed.
type SearchSweeper struct {
	cronEngine *cron.Cron
	orders     orderRepo.OrderRepository
	queue      SearchEnqueuer
	logger     *zap.Logger
	spec       string
	batchSize  int64
	now        func() time.Time
}

func NewSearchSweeper(
	orders orderRepo.OrderRepository,
	queue SearchEnqueuer,
	logger *zap.Logger,
	spec string, // e.g. "@every 1m"
	batchSize int64,
) *SearchSweeper {
	return &SearchSweeper{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		orders:     orders,
		queue:      queue,
		logger:     logger,
		spec:       spec,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

func (s *SearchSweeper) Start() error {
	_, err := s.cronEngine.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("search sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	s.cronEngine.Start()
	s.logger.Info("search sweeper started", zap.String("spec", s.spec))
	return nil
}

// Sweep queues one batch of due searches and returns how many were queued.
func (s *SearchSweeper) Sweep(ctx context.Context) (int, error) {
	due, err := s.orders.FindDueSearches(ctx, s.now(), s.batchSize)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, d := range due {
		ok, err := s.queue.Enqueue(ctx, tasks.SearchRunPayload{OrderID: d.OrderID, OrderGroupID: d.OrderGroupID})
		if err != nil {
			s.logger.Error("failed to queue search",
				zap.String("orderId", d.OrderID), zap.String("orderGroupId", d.OrderGroupID), zap.Error(err))
			continue
		}
		if ok {
			queued++
		}
	}
	if len(due) > 0 {
		s.logger.Info("search sweep", zap.Int("due", len(due)), zap.Int("queued", queued))
	}
	return queued, nil
}

func (s *SearchSweeper) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("search sweeper stopped")
}
