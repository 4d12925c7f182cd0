package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sentence builds a test sentence with a 2-d unit embedding.
func sentence(text string, tokens int, x, y float32) Sentence {
	return Sentence{Text: text, StartTime: "00:00:00,000", TokenCount: tokens, Embedding: []float32{x, y}}
}

func TestChunksEmpty(t *testing.T) {
	cfg := DefaultChunkingConfig()
	assert.Empty(t, cfg.Chunks(nil))
}

func TestChunksSingleSentence(t *testing.T) {
	cfg := DefaultChunkingConfig()
	chunks := cfg.Chunks([]Sentence{sentence("only one.", 3, 1, 0)})
	require.Len(t, chunks, 1)
	assert.Equal(t, "only one.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 3, chunks[0].TokenCount)
}

func TestChunksSplitAtTopicShift(t *testing.T) {
	// Two pairs of near-identical sentences with an orthogonal boundary
	// between them; the DP should split at the boundary.
	sentences := []Sentence{
		sentence("joins are binary operators.", 5, 1, 0),
		sentence("a hash join builds a table.", 6, 0.99, 0.05),
		sentence("now, grading is posted on canvas.", 6, 0, 1),
		sentence("check canvas for your score.", 5, 0.05, 0.99),
	}

	cfg := DefaultChunkingConfig()
	chunks := cfg.Chunks(sentences)
	require.Len(t, chunks, 2)

	assert.Contains(t, chunks[0].Text, "hash join")
	assert.Contains(t, chunks[1].Text, "canvas")
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[1].ChunkIndex)
	assert.Equal(t, 2, chunks[0].NumSentences)
}

func TestChunksRespectMaxSize(t *testing.T) {
	// Identical embeddings mean the reward always favors merging; only
	// the hard size limit can force a split.
	var sentences []Sentence
	for i := 0; i < 4; i++ {
		sentences = append(sentences, sentence("same topic throughout.", 300, 1, 0))
	}

	cfg := DefaultChunkingConfig()
	chunks := cfg.Chunks(sentences)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.Less(t, c.TokenCount, cfg.MaxSize)
	}

	// Dense re-index after the backward reconstruction
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
	}
}

func TestChunkEmbeddingIsMean(t *testing.T) {
	sentences := []Sentence{
		sentence("a.", 1, 1, 0),
		sentence("b.", 1, 0, 1),
	}

	cfg := ChunkingConfig{OptimalSize: 100, MaxSize: 200, LambdaSize: 2, ChunkPenalty: 5}
	chunks := cfg.Chunks(sentences)
	require.Len(t, chunks, 1)
	assert.InDelta(t, 0.5, chunks[0].Embedding[0], 1e-6)
	assert.InDelta(t, 0.5, chunks[0].Embedding[1], 1e-6)
}
