package store

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// Answers wraps the piazza_answers table. The primary key is
// (course, post_id), so a retried write for the same post overwrites
// rather than duplicating.
type Answers struct {
	session *gocql.Session
}

func NewAnswers(session *gocql.Session) *Answers {
	return &Answers{session: session}
}

// Upsert records a terminal answer for a post. Safe to call twice with
// the same key; the second write wins.
func (a *Answers) Upsert(course Course, postID int, question, answer, status string) error {
	query := `
		INSERT INTO piazza_answers (class_name, professor, semester, post_id, piazza_post, answer, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if err := a.session.Query(query,
		course.ClassName, course.Professor, course.Semester, postID,
		question, answer, status, time.Now(),
	).Exec(); err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}

	return nil
}

// Exists reports whether a post already has a recorded answer.
func (a *Answers) Exists(course Course, postID int) (bool, error) {
	query := `
		SELECT post_id FROM piazza_answers
		WHERE class_name = ? AND professor = ? AND semester = ? AND post_id = ?
	`

	var id int
	err := a.session.Query(query,
		course.ClassName, course.Professor, course.Semester, postID,
	).Scan(&id)
	if err == gocql.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking answer: %w", err)
	}

	return true, nil
}
