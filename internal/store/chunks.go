package store

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// ChunkIndex provides the two read paths over the embeddings and keywords
// tables plus point lookups for neighbor expansion.
type ChunkIndex struct {
	session *gocql.Session
}

func NewChunkIndex(session *gocql.Session) *ChunkIndex {
	return &ChunkIndex{session: session}
}

// VectorSearch returns the k nearest chunks to the query embedding,
// nearest first.
func (ci *ChunkIndex) VectorSearch(course Course, embedding []float32, k int) ([]Chunk, error) {
	query := `
		SELECT url, chunk_index, chunk_text, lecture_title, lecture_timestamp
		FROM embeddings
		WHERE class_name = ? AND professor = ? AND semester = ?
		ORDER BY embedding ANN OF ?
		LIMIT ?
	`

	iter := ci.session.Query(query,
		course.ClassName, course.Professor, course.Semester, embedding, k,
	).Iter()
	defer iter.Close()

	var chunks []Chunk
	var c Chunk
	for iter.Scan(&c.URL, &c.ChunkIndex, &c.ChunkText, &c.LectureTitle, &c.LectureTimestamp) {
		c.Course = course
		chunks = append(chunks, c)
		c = Chunk{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	return chunks, nil
}

// KeywordLookup returns every chunk the inverted index maps the term to.
// Terms are stored case-folded; callers pass lowercase terms.
func (ci *ChunkIndex) KeywordLookup(term string, course Course) ([]ChunkRef, error) {
	query := `
		SELECT url, chunk_index
		FROM keywords
		WHERE term = ? AND class_name = ? AND professor = ? AND semester = ?
	`

	iter := ci.session.Query(query,
		term, course.ClassName, course.Professor, course.Semester,
	).Iter()
	defer iter.Close()

	var refs []ChunkRef
	var r ChunkRef
	for iter.Scan(&r.URL, &r.ChunkIndex) {
		refs = append(refs, r)
		r = ChunkRef{}
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("keyword lookup failed: %w", err)
	}

	return refs, nil
}

// FetchChunk retrieves one chunk by position. A missing chunk is (nil, nil),
// not an error; neighbor expansion walks past transcript boundaries.
func (ci *ChunkIndex) FetchChunk(course Course, url string, chunkIndex int) (*Chunk, error) {
	query := `
		SELECT url, chunk_index, chunk_text, lecture_title, lecture_timestamp
		FROM embeddings
		WHERE class_name = ? AND professor = ? AND semester = ? AND url = ? AND chunk_index = ?
	`

	var c Chunk
	err := ci.session.Query(query,
		course.ClassName, course.Professor, course.Semester, url, chunkIndex,
	).Scan(&c.URL, &c.ChunkIndex, &c.ChunkText, &c.LectureTitle, &c.LectureTimestamp)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching chunk: %w", err)
	}

	c.Course = course
	return &c, nil
}

// InsertChunk writes a processed chunk into the embeddings table.
func InsertChunk(session *gocql.Session, c *Chunk) error {
	query := `
		INSERT INTO embeddings (
			class_name, professor, semester, url, chunk_index,
			chunk_text, embedding, token_count, lecture_title, lecture_timestamp, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return session.Query(query,
		c.Course.ClassName, c.Course.Professor, c.Course.Semester, c.URL, c.ChunkIndex,
		c.ChunkText, c.Embedding, c.TokenCount, c.LectureTitle, c.LectureTimestamp, time.Now(),
	).Exec()
}

// InsertKeywordPosting writes one term → chunk edge into the inverted index.
func InsertKeywordPosting(session *gocql.Session, term string, course Course, url string, chunkIndex int) error {
	query := `
		INSERT INTO keywords (term, class_name, professor, semester, url, chunk_index)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	return session.Query(query,
		term, course.ClassName, course.Professor, course.Semester, url, chunkIndex,
	).Exec()
}
