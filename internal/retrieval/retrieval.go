package retrieval

import (
	"context"
	"fmt"
	"sort"

	"piazza-qa/internal/llm"
	"piazza-qa/internal/store"
)

// Index is the read surface of the chunk index.
type Index interface {
	VectorSearch(course store.Course, embedding []float32, k int) ([]store.Chunk, error)
	KeywordLookup(term string, course store.Course) ([]store.ChunkRef, error)
	FetchChunk(course store.Course, url string, chunkIndex int) (*store.Chunk, error)
}

// Embedder turns text into a fixed-length normalized vector.
type Embedder interface {
	EmbedText(text string) ([]float32, error)
}

// Cluster is a run of adjacent chunks merged into one block of context.
// The citation metadata comes from the cluster's first member: citations
// point at where the match started.
type Cluster struct {
	Text             string
	LectureTitle     string
	LectureTimestamp string
}

// Engine runs hybrid retrieval: vector similarity and keyword match fused
// without duplication, then expanded into locally coherent clusters.
type Engine struct {
	index    Index
	embedder Embedder
	chat     llm.Chat
	limit    int
}

func NewEngine(index Index, embedder Embedder, chat llm.Chat, limit int) *Engine {
	return &Engine{index: index, embedder: embedder, chat: chat, limit: limit}
}

// Retrieve returns up to 2*limit clusters of lecture content related to
// the question, nearest-first vector hits ahead of keyword hits.
func (e *Engine) Retrieve(ctx context.Context, course store.Course, question string) ([]Cluster, error) {
	embedding, err := e.embedder.EmbedText(question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	vectorHits, err := e.index.VectorSearch(course, embedding, e.limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	keywords, err := e.extractKeywords(ctx, question)
	if err != nil {
		return nil, err
	}

	keywordHits, err := e.keywordSearch(course, keywords)
	if err != nil {
		return nil, err
	}

	merged := dedupe(append(vectorHits, keywordHits...))

	return e.expand(course, merged)
}

func (e *Engine) extractKeywords(ctx context.Context, question string) ([]string, error) {
	raw, err := e.chat.Chat(ctx, llm.KeywordPrompt(question))
	if err != nil {
		return nil, fmt.Errorf("keyword extraction: %w", err)
	}
	return llm.ParseKeywords(raw), nil
}

// keywordSearch scores each chunk by how many distinct keywords hit it,
// then fetches the top-scoring chunks. Ties break by (url, chunk_index)
// so the result is deterministic regardless of map iteration order.
func (e *Engine) keywordSearch(course store.Course, keywords []string) ([]store.Chunk, error) {
	scores := make(map[store.ChunkRef]int)

	for _, keyword := range keywords {
		refs, err := e.index.KeywordLookup(keyword, course)
		if err != nil {
			return nil, fmt.Errorf("keyword lookup %q: %w", keyword, err)
		}

		hit := make(map[store.ChunkRef]bool)
		for _, ref := range refs {
			if !hit[ref] {
				hit[ref] = true
				scores[ref]++
			}
		}
	}

	ranked := make([]store.ChunkRef, 0, len(scores))
	for ref := range scores {
		ranked = append(ranked, ref)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		if ranked[i].URL != ranked[j].URL {
			return ranked[i].URL < ranked[j].URL
		}
		return ranked[i].ChunkIndex < ranked[j].ChunkIndex
	})

	if len(ranked) > e.limit {
		ranked = ranked[:e.limit]
	}

	var chunks []store.Chunk
	for _, ref := range ranked {
		chunk, err := e.index.FetchChunk(course, ref.URL, ref.ChunkIndex)
		if err != nil {
			return nil, fmt.Errorf("fetching keyword hit: %w", err)
		}
		if chunk != nil {
			chunks = append(chunks, *chunk)
		}
	}

	return chunks, nil
}

// dedupe drops repeated (url, chunk_index) pairs, keeping the first
// occurrence. Scores are never combined across the two signals.
func dedupe(chunks []store.Chunk) []store.Chunk {
	seen := make(map[store.ChunkRef]bool)
	unique := make([]store.Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		key := store.ChunkRef{URL: chunk.URL, ChunkIndex: chunk.ChunkIndex}
		if !seen[key] {
			seen[key] = true
			unique = append(unique, chunk)
		}
	}

	return unique
}

// expand grows each chunk into a cluster of its neighbors at offsets
// {-1, 0, +1}, skipping negative indices and absent chunks. Expansion
// compensates for chunk boundaries splitting an explanation mid-thought.
func (e *Engine) expand(course store.Course, chunks []store.Chunk) ([]Cluster, error) {
	var clusters []Cluster

	for _, chunk := range chunks {
		var members []store.Chunk

		for offset := -1; offset <= 1; offset++ {
			idx := chunk.ChunkIndex + offset
			if idx < 0 {
				continue
			}

			member, err := e.index.FetchChunk(course, chunk.URL, idx)
			if err != nil {
				return nil, fmt.Errorf("expanding chunk: %w", err)
			}
			if member != nil {
				members = append(members, *member)
			}
		}

		if len(members) == 0 {
			continue
		}

		text := ""
		for i, m := range members {
			if i > 0 {
				text += "\n\n"
			}
			text += m.ChunkText
		}

		clusters = append(clusters, Cluster{
			Text:             text,
			LectureTitle:     members[0].LectureTitle,
			LectureTimestamp: members[0].LectureTimestamp,
		})
	}

	return clusters, nil
}
