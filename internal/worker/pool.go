package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studytrack-backend/internal/models"
)

const (
	maxAttempts    = 3
	pollErrorDelay = time.Second
)

func queueName(jobType string) string {
	return "queue:" + jobType
}

// Queue pushes jobs onto per-type Redis lists.
type Queue struct {
	redis *redis.Client
}

func NewQueue(redisClient *redis.Client) *Queue {
	return &Queue{redis: redisClient}
}

func (q *Queue) Enqueue(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, queueName(job.Type), data).Err()
}

type QuestionPreparer interface {
	Prepare(ctx context.Context, sessionID uuid.UUID) (int, error)
}

type ReadyNotifier interface {
	PublishQuestionsReady(ctx context.Context, userID, sessionID uuid.UUID, count int)
}

type Pool struct {
	redis       *redis.Client
	queue       *Queue
	preparer    QuestionPreparer
	notifier    ReadyNotifier
	workerCount int
	logger      *slog.Logger
	errorDelay  time.Duration
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

func NewPool(redisClient *redis.Client, preparer QuestionPreparer, notifier ReadyNotifier, workerCount int, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		redis:       redisClient,
		queue:       NewQueue(redisClient),
		preparer:    preparer,
		notifier:    notifier,
		workerCount: workerCount,
		logger:      logger,
		errorDelay:  pollErrorDelay,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{queueName(models.JobTypeQuestionGeneration)}

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i, queues)
	}

	p.logger.Info("started workers", "count", p.workerCount)
}

// Stop signals every worker and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

func (p *Pool) worker(id int, queues []string) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			p.logger.Info("worker shutting down", "worker", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with a short timeout so Stop is noticed promptly
		result, err := p.redis.BLPop(ctx, 5*time.Second, queues...).Result()
		if err != nil && err != redis.Nil {
			p.logger.Warn("queue poll failed", "worker", id, "error", err)
			if !p.wait(p.errorDelay) {
				p.logger.Info("worker shutting down", "worker", id)
				return
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			p.logger.Warn("failed to parse job", "worker", id, "error", err)
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log := p.logger.With("worker", id, "job_id", job.ID, "type", job.Type)
		log.Info("processing job")

		if err := p.process(ctx, &job); err != nil {
			p.handleFailure(ctx, log, &job, err)
		}

		p.redis.Del(ctx, lockKey)
	}
}

// wait sleeps for d and reports false if the pool was stopped first.
func (p *Pool) wait(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.stopChan:
		return false
	case <-t.C:
		return true
	}
}

func (p *Pool) process(ctx context.Context, job *models.Job) error {
	switch job.Type {
	case models.JobTypeQuestionGeneration:
		count, err := p.preparer.Prepare(ctx, job.SessionID)
		if err != nil {
			return err
		}
		if p.notifier != nil {
			p.notifier.PublishQuestionsReady(ctx, job.UserID, job.SessionID, count)
		}
		return nil
	}
	return fmt.Errorf("unknown job type: %s", job.Type)
}

// handleFailure requeues with exponential backoff. After the last attempt the
// job is dropped; the quiz is then generated when the user opens it.
func (p *Pool) handleFailure(ctx context.Context, log *slog.Logger, job *models.Job, err error) {
	job.Attempts++
	if job.Attempts >= maxAttempts {
		log.Error("job failed permanently", "attempts", job.Attempts, "error", err)
		return
	}

	log.Warn("job failed, retrying", "attempts", job.Attempts, "error", err)
	backoff := retryBackoff(job.Attempts)
	retry := *job
	retry.ID = uuid.New()
	time.AfterFunc(backoff, func() {
		if err := p.queue.Enqueue(context.Background(), &retry); err != nil {
			p.logger.Error("failed to requeue job", "job_id", retry.ID, "error", err)
		}
	})
}

func retryBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}
