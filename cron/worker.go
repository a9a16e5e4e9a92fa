package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linguahub/config"
	orderRepo "linguahub/database/repository/order"
	"linguahub/services/search"
	"linguahub/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// SearchRunner starts search runs. *search.Trigger implements it.
type SearchRunner interface {
	RunForOrder(ctx context.Context, orderID string, opts search.RunOptions) (search.Outcome, error)
	RunForGroup(ctx context.Context, groupID string, opts search.RunOptions) (search.Outcome, error)
}

// QueueRedisOpt is the asynq connection for the search queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitSearchWorker runs the search task consumer in the background. The
// returned server is shut down by the caller.
func InitSearchWorker(runner SearchRunner, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: config.AppConfig.WorkerConcurrency,
			Queues: map[string]int{
				tasks.QueueSearch: 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSearchRun, HandleSearchRunTask(runner, logger))

	go monitorRedisConnection(logger)

	go func() {
		logger.Info("starting search worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("search worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("search worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleSearchRunTask runs the search a task asks for. Duplicate runs and
// missing orders are not retried.
func HandleSearchRunTask(runner SearchRunner, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseSearchRunPayload(task)
		if err != nil {
			logger.Error("invalid search task", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		opts := search.RunOptions{Silent: p.Silent, Manual: p.Manual, IgnoreAvailability: p.IgnoreAvailability}
		var outcome search.Outcome
		if p.OrderID != "" {
			outcome, err = runner.RunForOrder(ctx, p.OrderID, opts)
		} else {
			outcome, err = runner.RunForGroup(ctx, p.OrderGroupID, opts)
		}

		log := logger.With(zap.String("orderId", p.OrderID), zap.String("orderGroupId", p.OrderGroupID))
		switch {
		case err == nil:
			log.Info("search task done", zap.String("outcome", string(outcome)))
			return nil
		case search.IsRunInFlight(err):
			log.Info("search already in flight, task dropped")
			return nil
		case errors.Is(err, orderRepo.ErrOrderNotFound), errors.Is(err, orderRepo.ErrGroupNotFound):
			log.Warn("search target gone", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		case errors.Is(err, search.ErrResultNotSaved) && outcome == search.OutcomeEscalated:
			// The red flag and admin alerts already went out.
			log.Error("escalated search result not saved", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		default:
			var se *search.SearchError
			if errors.As(err, &se) {
				log.Error("search task rejected", zap.Error(err))
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			log.Error("search task failed", zap.Error(err))
			return err
		}
	}
}

// monitorRedisConnection pings the queue Redis periodically to surface
// connection loss in the logs.
func monitorRedisConnection(logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()
	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("search queue redis unreachable", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
