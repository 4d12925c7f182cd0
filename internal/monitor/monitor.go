package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"piazza-qa/internal/jobqueue"
	"piazza-qa/internal/store"
)

// Forum is one course's view of the discussion feed.
type Forum interface {
	// Feed returns the ids of recent posts, most recent first or not;
	// order does not matter, only the ids.
	Feed(ctx context.Context) ([]int, error)
	// Post returns a post's plain-text subject and body. An empty string
	// means the post has no usable content.
	Post(ctx context.Context, id int) (string, error)
}

// Answers is the idempotency guard over recorded answers.
type Answers interface {
	Exists(course store.Course, postID int) (bool, error)
}

// State persists per-course watermarks.
type State interface {
	Watermark(course store.Course) (int, error)
	SetWatermark(course store.Course, postID int) error
}

// Jobs is where new question jobs go.
type Jobs interface {
	Push(ctx context.Context, job jobqueue.Job) error
}

// ProcessCourse runs one poll cycle for one course: evaluate every post
// above the watermark, queue the unanswered ones, then advance the
// watermark to the maximum id observed. The watermark moves only after
// the whole batch was evaluated, so a crash mid-cycle re-evaluates posts
// instead of skipping them; the answer store's upsert absorbs the
// duplicates. Advancing to the maximum observed id (not the maximum
// successfully processed one) keeps a single broken post from pinning
// the watermark forever.
func ProcessCourse(ctx context.Context, course store.Course, forum Forum, answers Answers, state State, jobs Jobs) (int, error) {
	watermark, err := state.Watermark(course)
	if err != nil {
		return 0, fmt.Errorf("reading watermark: %w", err)
	}

	ids, err := forum.Feed(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching feed: %w", err)
	}

	maxObserved := watermark
	var newPosts []int
	for _, id := range ids {
		if id > watermark {
			newPosts = append(newPosts, id)
			if id > maxObserved {
				maxObserved = id
			}
		}
	}

	queued := 0
	for _, id := range newPosts {
		answered, err := answers.Exists(course, id)
		if err != nil {
			return queued, fmt.Errorf("checking answer for post %d: %w", id, err)
		}
		if answered {
			log.Printf("    Post %d: already answered, skipping", id)
			continue
		}

		text, err := forum.Post(ctx, id)
		if err != nil {
			// Transient fetch failure on one post must not block the
			// cycle; the watermark still advances past it.
			log.Printf("    Post %d: error fetching post: %v", id, err)
			continue
		}
		if text == "" {
			log.Printf("    Post %d: empty content, skipping", id)
			continue
		}

		job := jobqueue.Job{
			ClassName: course.ClassName,
			Professor: course.Professor,
			Semester:  course.Semester,
			PostID:    id,
			PostText:  text,
		}
		if err := jobs.Push(ctx, job); err != nil {
			return queued, fmt.Errorf("queueing post %d: %w", id, err)
		}
		queued++
	}

	if maxObserved > watermark {
		if err := state.SetWatermark(course, maxObserved); err != nil {
			return queued, fmt.Errorf("updating watermark: %w", err)
		}
	}

	return queued, nil
}

// TooYoung reports whether a course is still inside the grace period that
// gives upstream ingestion time to index its lectures.
func TooYoung(cfg store.CourseConfig, minAge time.Duration, now time.Time) bool {
	if cfg.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(cfg.CreatedAt) < minAge
}
