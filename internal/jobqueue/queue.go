package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"piazza-qa/internal/config"
	"piazza-qa/internal/store"
)

// Job is one unanswered question pulled from Piazza. This is the wire
// format on the QA queue; field names are part of the contract.
type Job struct {
	ClassName string `json:"class_name"`
	Professor string `json:"professor"`
	Semester  string `json:"semester"`
	PostID    int    `json:"post_id"`
	PostText  string `json:"post_text"`
}

// Course returns the course identity the job belongs to.
func (j *Job) Course() store.Course {
	return store.Course{
		ClassName: j.ClassName,
		Professor: j.Professor,
		Semester:  j.Semester,
	}
}

// Queue is the durable FIFO of question jobs. Delivery is at-least-once;
// consumers absorb duplicates through the answer store's idempotent upsert.
type Queue struct {
	client *redis.Client
	name   string
}

// Connect establishes a connection to Redis and returns the job queue.
func Connect(cfg *config.RedisConfig) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Queue{client: client, name: cfg.JobQueue}, nil
}

// Push appends a job to the queue.
func (q *Queue) Push(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.RPush(ctx, q.name, string(payload)).Err(); err != nil {
		return fmt.Errorf("error pushing job: %w", err)
	}

	return nil
}

// Pop blocks until a job is available or the timeout elapses.
// Returns (nil, nil) on timeout so callers can idle and re-poll.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, q.name).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error popping job: %w", err)
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}

	return &job, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}
