package qa

import (
	"context"
	"fmt"

	"piazza-qa/internal/llm"
	"piazza-qa/internal/retrieval"
	"piazza-qa/internal/store"
)

// NoResponse is the terminal answer recorded when the pipeline abstains.
const NoResponse = llm.TokenNoResponse

// Retriever produces candidate evidence clusters for a question.
type Retriever interface {
	Retrieve(ctx context.Context, course store.Course, question string) ([]retrieval.Cluster, error)
}

// relevantCluster is a cluster that survived the relevance filter,
// carrying the summary used for synthesis.
type relevantCluster struct {
	Summary          string
	LectureTitle     string
	LectureTimestamp string
}

// Pipeline decides whether a question is answerable from lecture content
// and, when it is, synthesizes a cited answer from vetted evidence.
// It abstains with NoResponse rather than guess.
type Pipeline struct {
	chat      llm.Chat
	retriever Retriever
}

func NewPipeline(chat llm.Chat, retriever Retriever) *Pipeline {
	return &Pipeline{chat: chat, retriever: retriever}
}

// Run takes a question through answerability, retrieval, relevance
// filtering, and synthesis. The result is either NoResponse or non-empty
// cited answer text; collaborator failures propagate to the caller with
// nothing recorded.
func (p *Pipeline) Run(ctx context.Context, course store.Course, question string) (string, error) {
	raw, err := p.chat.Chat(ctx, llm.AnswerabilityPrompt(question))
	if err != nil {
		return "", fmt.Errorf("answerability check: %w", err)
	}
	if llm.ParseAnswerability(raw) != llm.Answerable {
		return NoResponse, nil
	}

	clusters, err := p.retriever.Retrieve(ctx, course, question)
	if err != nil {
		return "", fmt.Errorf("retrieval: %w", err)
	}
	if len(clusters) == 0 {
		return NoResponse, nil
	}

	relevant, err := p.filterRelevant(ctx, question, clusters)
	if err != nil {
		return "", err
	}
	if len(relevant) == 0 {
		return NoResponse, nil
	}

	return p.synthesize(ctx, question, relevant)
}

// filterRelevant evaluates each cluster independently, keeping those the
// model summarizes. Clusters never see each other, so duplicated evidence
// is not detected here.
func (p *Pipeline) filterRelevant(ctx context.Context, question string, clusters []retrieval.Cluster) ([]relevantCluster, error) {
	var relevant []relevantCluster

	for _, cluster := range clusters {
		raw, err := p.chat.Chat(ctx, llm.RelevancePrompt(question, cluster.Text))
		if err != nil {
			return nil, fmt.Errorf("relevance check: %w", err)
		}

		verdict := llm.ParseRelevance(raw)
		if !verdict.Relevant {
			continue
		}

		relevant = append(relevant, relevantCluster{
			Summary:          verdict.Summary,
			LectureTitle:     cluster.LectureTitle,
			LectureTimestamp: cluster.LectureTimestamp,
		})
	}

	return relevant, nil
}

// synthesize asks for a grounded final answer. The model may still abstain
// with the NO RESPONSE token; that is a terminal outcome, not an error.
func (p *Pipeline) synthesize(ctx context.Context, question string, relevant []relevantCluster) (string, error) {
	evidence := formatContext(relevant)

	raw, err := p.chat.Chat(ctx, llm.FinalAnswerPrompt(question, evidence))
	if err != nil {
		return "", fmt.Errorf("answer synthesis: %w", err)
	}

	answer, ok := llm.ParseAnswer(raw)
	if !ok {
		return NoResponse, nil
	}
	return answer, nil
}

// StatusFor maps a terminal answer to the status stored with it.
func StatusFor(answer string) string {
	if answer == NoResponse {
		return store.StatusNoResponse
	}
	return store.StatusSuccess
}
