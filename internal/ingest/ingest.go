package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/gocql/gocql"

	"piazza-qa/internal/config"
	"piazza-qa/internal/events"
	"piazza-qa/internal/frontier"
	"piazza-qa/internal/store"
)

// Ingestor turns frontier entries into transcript records. The browser
// automation that actually downloads a transcript is an external command;
// the ingestor records the outcome either way and announces successful
// downloads on the transcript-events topic.
type Ingestor struct {
	session   *gocql.Session
	publisher *events.Publisher
	cfg       *config.FetcherConfig
}

func New(session *gocql.Session, publisher *events.Publisher, cfg *config.FetcherConfig) *Ingestor {
	return &Ingestor{session: session, publisher: publisher, cfg: cfg}
}

// Ingest fetches one lecture's transcript and persists the result. A
// lecture whose transcript cannot be fetched is recorded with status
// "missing" so the URL is never revisited.
func (ing *Ingestor) Ingest(ctx context.Context, lecture *frontier.Lecture) error {
	text, err := ing.fetch(ctx, lecture.URL)
	status := store.StatusSuccess
	if err != nil {
		log.Printf("  No transcript available for %s: %v", lecture.URL, err)
		status = "missing"
		text = ""
	}

	transcript := &store.Transcript{
		Course: store.Course{
			ClassName: lecture.ClassName,
			Professor: lecture.Professor,
			Semester:  lecture.Semester,
		},
		URL:            lecture.URL,
		LectureNumber:  lecture.LectureNumber,
		LectureTitle:   lecture.LectureTitle,
		TranscriptText: text,
		Status:         status,
	}

	if err := store.InsertTranscript(ing.session, transcript); err != nil {
		return fmt.Errorf("storing transcript: %w", err)
	}

	if status != store.StatusSuccess {
		return nil
	}

	ev := events.TranscriptEvent{
		ClassName: lecture.ClassName,
		Professor: lecture.Professor,
		Semester:  lecture.Semester,
		URL:       lecture.URL,
	}
	if err := ing.publisher.Publish(ctx, ev); err != nil {
		return fmt.Errorf("publishing transcript event: %w", err)
	}

	return nil
}

// fetch runs the external fetch command, which downloads the transcript
// into the download dir and prints the file path on stdout.
func (ing *Ingestor) fetch(ctx context.Context, url string) (string, error) {
	cmd := exec.CommandContext(ctx, ing.cfg.FetchCommand, url, ing.cfg.DownloadDir)

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("fetch command failed: %w", err)
	}

	path := strings.TrimSpace(string(output))
	if path == "" {
		return "", fmt.Errorf("fetch command produced no file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading downloaded transcript: %w", err)
	}

	return string(data), nil
}
