package store

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// InsertTranscript records one fetched lecture. The transcripts table is
// append-only by URL; status is "success" or "missing".
func InsertTranscript(session *gocql.Session, t *Transcript) error {
	query := `
		INSERT INTO transcripts (
			class_name, professor, semester, url, lecture_number,
			lecture_title, transcript_text, status, downloaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if err := session.Query(query,
		t.Course.ClassName, t.Course.Professor, t.Course.Semester, t.URL, t.LectureNumber,
		t.LectureTitle, t.TranscriptText, t.Status, time.Now(),
	).Exec(); err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}

	return nil
}

// FetchTranscript retrieves a single transcript by its course and URL.
func FetchTranscript(session *gocql.Session, course Course, url string) (*Transcript, error) {
	query := `
		SELECT class_name, professor, semester, url, lecture_number, lecture_title, transcript_text, status
		FROM transcripts
		WHERE class_name = ? AND professor = ? AND semester = ? AND url = ?
	`

	var t Transcript
	err := session.Query(query, course.ClassName, course.Professor, course.Semester, url).Scan(
		&t.Course.ClassName, &t.Course.Professor, &t.Course.Semester,
		&t.URL, &t.LectureNumber, &t.LectureTitle, &t.TranscriptText, &t.Status,
	)
	if err == gocql.ErrNotFound {
		return nil, fmt.Errorf("no transcript for %s", url)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching transcript: %w", err)
	}

	return &t, nil
}
