package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piazza-qa/internal/jobqueue"
	"piazza-qa/internal/store"
)

var testCourse = store.Course{ClassName: "CS544", Professor: "Tyler", Semester: "FALL25"}

type fakeForum struct {
	feed    []int
	posts   map[int]string
	failing map[int]bool
}

func (f *fakeForum) Feed(ctx context.Context) ([]int, error) {
	return f.feed, nil
}

func (f *fakeForum) Post(ctx context.Context, id int) (string, error) {
	if f.failing[id] {
		return "", errors.New("fetch failed")
	}
	return f.posts[id], nil
}

type fakeAnswers struct {
	answered map[int]bool
}

func (f *fakeAnswers) Exists(course store.Course, postID int) (bool, error) {
	return f.answered[postID], nil
}

type fakeState struct {
	watermark int
	sets      []int
}

func (f *fakeState) Watermark(course store.Course) (int, error) {
	return f.watermark, nil
}

func (f *fakeState) SetWatermark(course store.Course, postID int) error {
	f.watermark = postID
	f.sets = append(f.sets, postID)
	return nil
}

type fakeJobs struct {
	jobs []jobqueue.Job
}

func (f *fakeJobs) Push(ctx context.Context, job jobqueue.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func queuedIDs(jobs []jobqueue.Job) []int {
	ids := make([]int, len(jobs))
	for i, j := range jobs {
		ids[i] = j.PostID
	}
	return ids
}

func TestProcessCourseFiltersByWatermark(t *testing.T) {
	forum := &fakeForum{
		feed:  []int{48, 51, 52},
		posts: map[int]string{48: "old", 51: "question 51", 52: "question 52"},
	}
	state := &fakeState{watermark: 50}
	jobs := &fakeJobs{}

	queued, err := ProcessCourse(context.Background(), testCourse, forum, &fakeAnswers{answered: map[int]bool{}}, state, jobs)
	require.NoError(t, err)

	assert.Equal(t, 2, queued)
	assert.Equal(t, []int{51, 52}, queuedIDs(jobs.jobs))
	assert.Equal(t, 52, state.watermark)
}

func TestProcessCourseSkipsAnsweredPosts(t *testing.T) {
	forum := &fakeForum{
		feed:  []int{51, 52},
		posts: map[int]string{51: "question 51", 52: "question 52"},
	}
	answers := &fakeAnswers{answered: map[int]bool{51: true}}
	state := &fakeState{watermark: 50}
	jobs := &fakeJobs{}

	queued, err := ProcessCourse(context.Background(), testCourse, forum, answers, state, jobs)
	require.NoError(t, err)

	assert.Equal(t, 1, queued)
	assert.Equal(t, []int{52}, queuedIDs(jobs.jobs))
	assert.Equal(t, 52, state.watermark)
}

func TestProcessCourseAdvancesPastFailedFetch(t *testing.T) {
	// Post 53 cannot be fetched; it is skipped, and the watermark still
	// moves to the max observed id so the cycle never wedges on it.
	forum := &fakeForum{
		feed:    []int{51, 53},
		posts:   map[int]string{51: "question 51"},
		failing: map[int]bool{53: true},
	}
	state := &fakeState{watermark: 50}
	jobs := &fakeJobs{}

	queued, err := ProcessCourse(context.Background(), testCourse, forum, &fakeAnswers{answered: map[int]bool{}}, state, jobs)
	require.NoError(t, err)

	assert.Equal(t, 1, queued)
	assert.Equal(t, 53, state.watermark)
}

func TestProcessCourseSkipsEmptyPosts(t *testing.T) {
	forum := &fakeForum{
		feed:  []int{51},
		posts: map[int]string{51: ""},
	}
	state := &fakeState{watermark: 0}
	jobs := &fakeJobs{}

	queued, err := ProcessCourse(context.Background(), testCourse, forum, &fakeAnswers{answered: map[int]bool{}}, state, jobs)
	require.NoError(t, err)

	assert.Zero(t, queued)
	assert.Equal(t, 51, state.watermark)
}

func TestWatermarkMonotonic(t *testing.T) {
	forum := &fakeForum{
		feed:  []int{40, 42},
		posts: map[int]string{40: "a", 42: "b"},
	}
	state := &fakeState{watermark: 50}
	jobs := &fakeJobs{}

	_, err := ProcessCourse(context.Background(), testCourse, forum, &fakeAnswers{answered: map[int]bool{}}, state, jobs)
	require.NoError(t, err)

	// Nothing above the watermark: no jobs, no watermark write at all.
	assert.Empty(t, jobs.jobs)
	assert.Empty(t, state.sets)
	assert.Equal(t, 50, state.watermark)
}

func TestWatermarkEqualsMaxAcrossCycles(t *testing.T) {
	state := &fakeState{}
	jobs := &fakeJobs{}
	answers := &fakeAnswers{answered: map[int]bool{}}

	cycles := [][]int{{3, 1}, {2, 5}, {4}}
	max := 0
	for _, feed := range cycles {
		forum := &fakeForum{feed: feed, posts: map[int]string{}}
		for _, id := range feed {
			forum.posts[id] = "text"
			if id > max {
				max = id
			}
		}
		_, err := ProcessCourse(context.Background(), testCourse, forum, answers, state, jobs)
		require.NoError(t, err)
		assert.Equal(t, max, state.watermark)
	}

	// Every recorded watermark value was non-decreasing.
	prev := 0
	for _, v := range state.sets {
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestTooYoung(t *testing.T) {
	now := time.Now()

	cfg := store.CourseConfig{CreatedAt: now.Add(-5 * time.Minute)}
	assert.True(t, TooYoung(cfg, 10*time.Minute, now))

	cfg.CreatedAt = now.Add(-15 * time.Minute)
	assert.False(t, TooYoung(cfg, 10*time.Minute, now))

	// A missing created_at means the course is old enough to poll.
	assert.False(t, TooYoung(store.CourseConfig{}, 10*time.Minute, now))
}
