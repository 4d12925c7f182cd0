package store

import "time"

// Course identifies a class section. Every table is partitioned by this key;
// it is always supplied by configuration, never inferred from content.
type Course struct {
	ClassName string
	Professor string
	Semester  string
}

// Transcript is one lecture transcript row. Rows are append-only by URL;
// the fetcher is the sole writer.
type Transcript struct {
	Course         Course
	URL            string
	LectureNumber  int
	LectureTitle   string
	TranscriptText string
	Status         string // "success" or "missing"
	DownloadedAt   time.Time
}

// Chunk is one indexed transcript slice. ChunkIndex is a dense 0-based
// sequence per (course, url), so neighbors are reachable by offset.
type Chunk struct {
	Course           Course
	URL              string
	ChunkIndex       int
	ChunkText        string
	Embedding        []float32
	TokenCount       int
	LectureTitle     string
	LectureTimestamp string
}

// ChunkRef points at a chunk without carrying its text or embedding.
type ChunkRef struct {
	URL        string
	ChunkIndex int
}

// CourseConfig is one monitored course from the piazza_config table.
type CourseConfig struct {
	NetworkID string
	Course    Course
	Email     string
	Password  string
	CreatedAt time.Time
}

// Parser is a discovery script stored in Cassandra and mirrored to disk.
type Parser struct {
	ParserName string
	CodeText   string
}

// Answer statuses recorded in piazza_answers.
const (
	StatusSuccess    = "success"
	StatusNoResponse = "no_response"
)
