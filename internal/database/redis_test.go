package database

import (
	"runtime"
	"testing"
)

func TestRedisOptions_PoolSizes(t *testing.T) {
	defaultPool := 10 * runtime.GOMAXPROCS(0)

	tests := []struct {
		name      string
		url       string
		workers   int
		wantQueue int
	}{
		{"default pool covers few workers", "redis://localhost:6379/0", 1, max(defaultPool, 1+queueHeadroom)},
		{"many workers grow the pool", "redis://localhost:6379/0", defaultPool + 5, defaultPool + 5 + queueHeadroom},
		{"explicit pool size kept", "redis://localhost:6379/0?pool_size=50", 3, 50},
		{"explicit pool size raised", "redis://localhost:6379/0?pool_size=5", 3, 3 + queueHeadroom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue, pubsub, err := redisOptions(tt.url, tt.workers)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if queue.PoolSize != tt.wantQueue {
				t.Errorf("expected queue pool %d, got %d", tt.wantQueue, queue.PoolSize)
			}
			if pubsub.PoolSize != pubsubPool {
				t.Errorf("expected pubsub pool %d, got %d", pubsubPool, pubsub.PoolSize)
			}
			if pubsub == queue {
				t.Errorf("expected separate option structs")
			}
			if pubsub.Addr != queue.Addr || pubsub.DB != queue.DB {
				t.Errorf("expected shared address, got %s/%d and %s/%d", queue.Addr, queue.DB, pubsub.Addr, pubsub.DB)
			}
		})
	}
}

func TestRedisOptions_BadURL(t *testing.T) {
	if _, _, err := redisOptions("http://localhost:6379", 1); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
}
