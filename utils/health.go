package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo       bool       `json:"mongo"`
	Redis       []bool     `json:"redis"`
	SearchQueue QueueStats `json:"searchQueue"`
	CheckedAt   time.Time  `json:"checkedAt"`
}

// QueueStats is the backlog of the search task queue.
type QueueStats struct {
	Reachable bool `json:"reachable"`
	Pending   int  `json:"pending"`
	Active    int  `json:"active"`
	Retry     int  `json:"retry"`
	Archived  int  `json:"archived"`
}

// QueueInspector is the part of asynq.Inspector the monitor reads.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// HealthProbe checks every dependency once.
type HealthProbe struct {
	RedisClients []*redis.Client
	MongoClient  *mongo.Client
	Inspector    QueueInspector
	Queue        string
}

// Check pings everything and stores the snapshot.
func (p HealthProbe) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var redisHealth []bool
	for _, client := range p.RedisClients {
		err := client.Ping(ctx).Err()
		redisHealth = append(redisHealth, err == nil)
	}

	status := HealthStatus{
		Redis:     redisHealth,
		CheckedAt: time.Now(),
	}
	if p.MongoClient != nil {
		status.Mongo = p.MongoClient.Ping(ctx, nil) == nil
	}
	if p.Inspector != nil {
		status.SearchQueue = queueStats(p.Inspector, p.Queue)
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

func queueStats(inspector QueueInspector, queue string) QueueStats {
	info, err := inspector.GetQueueInfo(queue)
	if err != nil {
		return QueueStats{}
	}
	return QueueStats{
		Reachable: true,
		Pending:   info.Pending,
		Active:    info.Active,
		Retry:     info.Retry,
		Archived:  info.Archived,
	}
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
func StartHealthMonitor(probe HealthProbe, interval time.Duration) {
	go func() {
		ctx := context.Background()
		probe.Check(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			probe.Check(ctx)
		}
	}()
}
