package store

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// CourseState wraps the piazza_state table holding each course's watermark:
// the highest post id already evaluated for that course.
type CourseState struct {
	session *gocql.Session
}

func NewCourseState(session *gocql.Session) *CourseState {
	return &CourseState{session: session}
}

// Watermark returns the last processed post id for a course, 0 if the
// course has never been polled.
func (cs *CourseState) Watermark(course Course) (int, error) {
	query := `
		SELECT last_processed_post_id FROM piazza_state
		WHERE class_name = ? AND professor = ? AND semester = ?
	`

	var id int
	err := cs.session.Query(query,
		course.ClassName, course.Professor, course.Semester,
	).Scan(&id)
	if err == gocql.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error reading watermark: %w", err)
	}

	return id, nil
}

// SetWatermark advances the last processed post id. Callers only call this
// after every post in the cycle has been evaluated, and only with values
// at or above the current watermark.
func (cs *CourseState) SetWatermark(course Course, postID int) error {
	query := `
		INSERT INTO piazza_state (class_name, professor, semester, last_processed_post_id, last_poll_time)
		VALUES (?, ?, ?, ?, ?)
	`

	if err := cs.session.Query(query,
		course.ClassName, course.Professor, course.Semester, postID, time.Now(),
	).Exec(); err != nil {
		return fmt.Errorf("failed to update watermark: %w", err)
	}

	return nil
}
