package worker

import (
	"context"
	"log"
	"time"

	"piazza-qa/internal/jobqueue"
	"piazza-qa/internal/qa"
	"piazza-qa/internal/store"
)

// Pipeline runs one question to a terminal answer.
type Pipeline interface {
	Run(ctx context.Context, course store.Course, question string) (string, error)
}

// Queue is the shared job queue the worker pulls from.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (*jobqueue.Job, error)
}

// Answers records terminal outcomes.
type Answers interface {
	Upsert(course store.Course, postID int, question, answer, status string) error
}

// Run is the worker loop: pop, process, record, repeat. A failed job is
// logged and abandoned with nothing recorded; the monitor re-discovers it
// while it stays unanswered. Shutdown is cooperative, checked between
// jobs only; a job that starts always reaches a terminal state or a
// caught failure.
func Run(ctx context.Context, queue Queue, pipeline Pipeline, answers Answers, popTimeout time.Duration) {
	jobCount := 0

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down...")
			return
		default:
		}

		job, err := queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Shutting down...")
				return
			}
			log.Printf("Error popping job: %v", err)
			continue
		}
		if job == nil {
			// Timeout, no jobs available
			continue
		}

		jobCount++
		log.Printf("[Job #%d] Processing %s post #%d", jobCount, job.ClassName, job.PostID)

		answer, err := pipeline.Run(ctx, job.Course(), job.PostText)
		if err != nil {
			log.Printf("Error processing job: %v", err)
			log.Println("Continuing to next job...")
			continue
		}

		status := qa.StatusFor(answer)
		if err := answers.Upsert(job.Course(), job.PostID, job.PostText, answer, status); err != nil {
			log.Printf("Error saving answer for post %d: %v", job.PostID, err)
			continue
		}

		log.Printf("[Job #%d] Complete (status: %s)", jobCount, status)
	}
}
