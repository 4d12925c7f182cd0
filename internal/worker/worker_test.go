package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"piazza-qa/internal/jobqueue"
	"piazza-qa/internal/qa"
	"piazza-qa/internal/store"
)

// fakeQueue serves a fixed list of jobs, then cancels the context so the
// loop exits instead of idling.
type fakeQueue struct {
	jobs   []jobqueue.Job
	cancel context.CancelFunc
}

func (f *fakeQueue) Pop(ctx context.Context, timeout time.Duration) (*jobqueue.Job, error) {
	if len(f.jobs) == 0 {
		f.cancel()
		return nil, ctx.Err()
	}
	job := f.jobs[0]
	f.jobs = f.jobs[1:]
	return &job, nil
}

type recordingAnswers struct {
	records map[int]string // post id -> status
}

func (r *recordingAnswers) Upsert(course store.Course, postID int, question, answer, status string) error {
	r.records[postID] = status
	return nil
}

func job(id int, text string) jobqueue.Job {
	return jobqueue.Job{ClassName: "CS544", Professor: "Tyler", Semester: "FALL25", PostID: id, PostText: text}
}

func TestRunRecordsTerminalStatuses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	queue := &fakeQueue{jobs: []jobqueue.Job{job(1, "q1"), job(2, "q2")}, cancel: cancel}

	// Post 1 gets an answer, post 2 an abstention; both are recorded.
	pipeline := &pipelineByID{results: map[int]string{1: "an answer", 2: qa.NoResponse}}
	answers := &recordingAnswers{records: map[int]string{}}

	Run(ctx, queue, pipeline, answers, time.Second)

	assert.Equal(t, store.StatusSuccess, answers.records[1])
	assert.Equal(t, store.StatusNoResponse, answers.records[2])
}

func TestRunAbandonsFailedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	queue := &fakeQueue{jobs: []jobqueue.Job{job(1, "q1"), job(2, "q2")}, cancel: cancel}

	// Post 1 fails; nothing is recorded for it and the loop continues.
	pipeline := &pipelineByID{
		results: map[int]string{2: "an answer"},
		fail:    map[int]bool{1: true},
	}
	answers := &recordingAnswers{records: map[int]string{}}

	Run(ctx, queue, pipeline, answers, time.Second)

	_, recorded := answers.records[1]
	assert.False(t, recorded, "failed job must leave no record")
	assert.Equal(t, store.StatusSuccess, answers.records[2])
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	queue := &fakeQueue{cancel: cancel}
	answers := &recordingAnswers{records: map[int]string{}}

	done := make(chan struct{})
	go func() {
		Run(ctx, queue, &pipelineByID{}, answers, time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancelled context")
	}
	assert.Empty(t, answers.records)
}

// pipelineByID keys results off the post text "q<id>" convention above.
type pipelineByID struct {
	results map[int]string
	fail    map[int]bool
}

func (p *pipelineByID) Run(ctx context.Context, course store.Course, question string) (string, error) {
	var id int
	if len(question) > 1 {
		id = int(question[1] - '0')
	}
	if p.fail[id] {
		return "", errors.New("llm unreachable")
	}
	return p.results[id], nil
}
