package database

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisConnectTimeout = 10 * time.Second
	// Connections left for locks, rate limits and the question cache while
	// every worker sits in BLPOP.
	queueHeadroom = 10
	pubsubPool    = 4
)

// RedisClients separates the blocking queue connection from the one that
// serves subscriptions.
type RedisClients struct {
	Queue  *redis.Client
	PubSub *redis.Client
}

// NewRedisClients dials both clients from one URL. workers is the number of
// queue consumers; each holds a connection for the length of its BLPOP.
func NewRedisClients(ctx context.Context, redisURL string, workers int) (*RedisClients, error) {
	queueOpt, pubsubOpt, err := redisOptions(redisURL, workers)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	queueClient, err := dialRedis(ctx, queueOpt, "queue")
	if err != nil {
		return nil, err
	}
	pubsubClient, err := dialRedis(ctx, pubsubOpt, "pubsub")
	if err != nil {
		queueClient.Close()
		return nil, err
	}

	return &RedisClients{
		Queue:  queueClient,
		PubSub: pubsubClient,
	}, nil
}

func redisOptions(redisURL string, workers int) (queue, pubsub *redis.Options, err error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	queue = opt
	if queue.PoolSize == 0 {
		queue.PoolSize = 10 * runtime.GOMAXPROCS(0)
	}
	if floor := workers + queueHeadroom; queue.PoolSize < floor {
		queue.PoolSize = floor
	}

	p := *opt
	pubsub = &p
	pubsub.PoolSize = pubsubPool
	pubsub.MinIdleConns = 0
	return queue, pubsub, nil
}

func dialRedis(ctx context.Context, opt *redis.Options, name string) (*redis.Client, error) {
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis (%s): %w", name, err)
	}
	return client, nil
}

// Ping reports whether both clients can still reach the server.
func (r *RedisClients) Ping(ctx context.Context) error {
	if err := r.Queue.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis queue: %w", err)
	}
	if err := r.PubSub.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis pubsub: %w", err)
	}
	return nil
}

func (r *RedisClients) Close() {
	r.Queue.Close()
	r.PubSub.Close()
}
