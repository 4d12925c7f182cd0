package frontier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"piazza-qa/internal/config"
)

// Lecture is one discovered lecture URL with the course it belongs to.
// This is the wire format on the frontier queue.
type Lecture struct {
	ClassName     string `json:"class_name"`
	Professor     string `json:"professor"`
	Semester      string `json:"semester"`
	URL           string `json:"url"`
	LectureTitle  string `json:"lecture_title"`
	LectureNumber int    `json:"lecture_number"`
}

// Tracker maintains the frontier: a permanent seen-set of discovered URLs
// and a FIFO queue of lectures awaiting ingestion.
type Tracker struct {
	client  *redis.Client
	queue   string
	seenSet string
}

// Connect establishes a connection to Redis and returns a Tracker.
func Connect(cfg *config.RedisConfig) (*Tracker, error) {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Tracker{
		client:  client,
		queue:   cfg.Frontier,
		seenSet: cfg.SeenSet,
	}, nil
}

// Discover adds every not-yet-seen lecture to the seen-set and the queue,
// returning how many were newly added. The seen-set write happens first:
// a crash between the two writes can lose a URL, but never enqueues one
// twice.
func (t *Tracker) Discover(ctx context.Context, lectures []Lecture) (int, error) {
	added := 0
	for _, lecture := range lectures {
		newlyAdded, err := t.add(ctx, lecture)
		if err != nil {
			return added, err
		}
		if newlyAdded {
			added++
		}
	}
	return added, nil
}

func (t *Tracker) add(ctx context.Context, lecture Lecture) (bool, error) {
	seen, err := t.client.SIsMember(ctx, t.seenSet, lecture.URL).Result()
	if err != nil {
		return false, fmt.Errorf("error checking seen set: %w", err)
	}
	if seen {
		return false, nil
	}

	if err := t.client.SAdd(ctx, t.seenSet, lecture.URL).Err(); err != nil {
		return false, fmt.Errorf("error adding to seen set: %w", err)
	}

	payload, err := json.Marshal(lecture)
	if err != nil {
		return false, fmt.Errorf("failed to marshal lecture: %w", err)
	}

	if err := t.client.RPush(ctx, t.queue, string(payload)).Err(); err != nil {
		return false, fmt.Errorf("error adding to queue: %w", err)
	}

	return true, nil
}

// Pop blocks until a lecture is available or the timeout elapses.
// Returns (nil, nil) on timeout.
func (t *Tracker) Pop(ctx context.Context, timeout time.Duration) (*Lecture, error) {
	result, err := t.client.BLPop(ctx, timeout, t.queue).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error popping frontier: %w", err)
	}

	// BLPop returns [key, value]
	var lecture Lecture
	if err := json.Unmarshal([]byte(result[1]), &lecture); err != nil {
		return nil, fmt.Errorf("failed to parse frontier entry: %w", err)
	}

	return &lecture, nil
}

// SeenCount returns the size of the seen-set.
func (t *Tracker) SeenCount(ctx context.Context) (int64, error) {
	count, err := t.client.SCard(ctx, t.seenSet).Result()
	if err != nil {
		return 0, fmt.Errorf("error getting seen count: %w", err)
	}
	return count, nil
}

// QueueLength returns the number of lectures awaiting ingestion.
func (t *Tracker) QueueLength(ctx context.Context) (int64, error) {
	length, err := t.client.LLen(ctx, t.queue).Result()
	if err != nil {
		return 0, fmt.Errorf("error getting queue length: %w", err)
	}
	return length, nil
}

func (t *Tracker) Close() error {
	return t.client.Close()
}
