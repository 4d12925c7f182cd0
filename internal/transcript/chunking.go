package transcript

import (
	"errors"
	"math"
	"strings"
)

// Chunk is a run of semantically related sentences. ChunkIndex is the
// dense 0-based position of the chunk within its lecture.
type Chunk struct {
	Text         string
	StartTime    string
	Embedding    []float32
	NumSentences int
	TokenCount   int
	ChunkIndex   int
}

// ChunkingConfig holds the tunable parameters of the chunking objective.
type ChunkingConfig struct {
	OptimalSize  int     // no size penalty at or below this many tokens
	MaxSize      int     // hard token limit, infinite penalty at or above
	LambdaSize   float32 // penalty in edge units as size approaches MaxSize
	ChunkPenalty float32 // per-chunk cost, discourages tiny chunks
}

func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		OptimalSize:  470,
		MaxSize:      512,
		LambdaSize:   2.0,
		ChunkPenalty: 1.0,
	}
}

// sizePenalty is a hinge on the token count of sentences [i, j):
// 0 up to OptimalSize, rising linearly to LambdaSize at MaxSize,
// then infinite.
func (cfg ChunkingConfig) sizePenalty(i, j int, prefixTokens []int) float32 {
	tokens := prefixTokens[j] - prefixTokens[i]

	if tokens <= cfg.OptimalSize {
		return 0
	}
	if tokens >= cfg.MaxSize {
		return float32(math.MaxFloat32)
	}

	frac := float32(tokens-cfg.OptimalSize) / float32(cfg.MaxSize-cfg.OptimalSize)
	return cfg.LambdaSize * frac
}

// Chunks partitions sentences into chunks by dynamic programming,
// maximizing intra-chunk adjacent-sentence similarity while penalizing
// oversized and undersized chunks.
//
// dp[j] = best score for sentences 0..j-1
// dp[j] = max over i<j of dp[i] + reward(i,j) - sizePenalty(i,j) - ChunkPenalty
// start[j] records the i that achieved dp[j] for reconstruction.
func (cfg ChunkingConfig) Chunks(sentences []Sentence) []Chunk {
	if len(sentences) == 0 {
		return []Chunk{}
	}

	n := len(sentences)

	// Adjacent cosine similarities, z-score normalized so the reward and
	// the penalty live on comparable scales.
	sim := make([]float32, 0, n-1)
	for i := 0; i < n-1; i++ {
		s, err := cosineSimilarity(sentences[i].Embedding, sentences[i+1].Embedding)
		if err != nil {
			s = 0
		}
		sim = append(sim, s)
	}
	zNormalize(sim)

	prefixSim := make([]float32, n)
	for i := 0; i < n-1; i++ {
		prefixSim[i+1] = prefixSim[i] + sim[i]
	}

	prefixTokens := make([]int, n+1)
	for i := 0; i < n; i++ {
		prefixTokens[i+1] = prefixTokens[i] + sentences[i].TokenCount
	}

	dp := make([]float32, n+1)
	start := make([]int, n+1)

	for j := 1; j <= n; j++ {
		dp[j] = float32(math.Inf(-1))
		for i := 0; i < j; i++ {
			score := dp[i] + segmentReward(i, j, prefixSim) - cfg.sizePenalty(i, j, prefixTokens) - cfg.ChunkPenalty
			if score > dp[j] {
				dp[j] = score
				start[j] = i
			}
		}
	}

	// Walk parent pointers back from n, then reverse.
	var chunks []Chunk
	pos := n
	for pos > 0 {
		prev := start[pos]
		chunks = append(chunks, buildChunk(sentences[prev:pos]))
		pos = prev
	}

	for i, j := 0, len(chunks)-1; i < j; i, j = i+1, j-1 {
		chunks[i], chunks[j] = chunks[j], chunks[i]
	}
	for i := range chunks {
		chunks[i].ChunkIndex = i
	}

	return chunks
}

func buildChunk(sentences []Sentence) Chunk {
	texts := make([]string, len(sentences))
	tokens := 0
	for i, s := range sentences {
		texts[i] = s.Text
		tokens += s.TokenCount
	}

	chunk := Chunk{
		Text:         strings.Join(texts, " "),
		StartTime:    sentences[0].StartTime,
		NumSentences: len(sentences),
		TokenCount:   tokens,
	}

	// Chunk embedding is the mean of its sentence embeddings; the final
	// stored embedding is recomputed from the chunk text by the caller.
	if dim := len(sentences[0].Embedding); dim > 0 {
		chunk.Embedding = make([]float32, dim)
		for _, s := range sentences {
			for i, v := range s.Embedding {
				chunk.Embedding[i] += v
			}
		}
		for i := range chunk.Embedding {
			chunk.Embedding[i] /= float32(len(sentences))
		}
	}

	return chunk
}

// segmentReward sums the adjacent similarities inside sentences [i, j).
func segmentReward(i, j int, prefixSim []float32) float32 {
	if j-i <= 1 {
		return 0
	}
	return prefixSim[j-1] - prefixSim[i]
}

func zNormalize(v []float32) {
	if len(v) == 0 {
		return
	}

	var sum float64
	for _, x := range v {
		sum += float64(x)
	}
	mean := sum / float64(len(v))

	var sqSum float64
	for _, x := range v {
		d := float64(x) - mean
		sqSum += d * d
	}
	std := math.Sqrt(sqSum / float64(len(v)))
	if std == 0 {
		std = 1
	}

	for i, x := range v {
		v[i] = float32((float64(x) - mean) / std)
	}
}

func cosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, errors.New("different length vectors")
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, errors.New("zero vector")
	}

	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))), nil
}
