package qa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piazza-qa/internal/retrieval"
	"piazza-qa/internal/store"
)

var testCourse = store.Course{ClassName: "CS544", Professor: "Tyler", Semester: "FALL25"}

// scriptedChat dispatches on which of the four prompts it was handed.
type scriptedChat struct {
	answerability string
	relevance     map[string]string // cluster text fragment -> reply
	finalAnswer   string
	finalPrompts  []string
	err           error
}

func (s *scriptedChat) Chat(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}

	switch {
	case strings.Contains(prompt, "evaluating whether a Piazza post"):
		return s.answerability, nil
	case strings.Contains(prompt, "identifying keywords"):
		return "", nil
	case strings.Contains(prompt, "Determine if this lecture content"):
		for fragment, reply := range s.relevance {
			if strings.Contains(prompt, fragment) {
				return reply, nil
			}
		}
		return "NOT RELEVANT", nil
	default:
		s.finalPrompts = append(s.finalPrompts, prompt)
		return s.finalAnswer, nil
	}
}

type fakeRetriever struct {
	clusters []retrieval.Cluster
	calls    int
	err      error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, course store.Course, question string) ([]retrieval.Cluster, error) {
	f.calls++
	return f.clusters, f.err
}

func TestNotAnswerableSkipsRetrieval(t *testing.T) {
	chat := &scriptedChat{answerability: "NOT_ANSWERABLE"}
	retriever := &fakeRetriever{}

	answer, err := NewPipeline(chat, retriever).Run(context.Background(), testCourse, "What's office hours?")
	require.NoError(t, err)

	assert.Equal(t, NoResponse, answer)
	assert.Zero(t, retriever.calls, "retrieval must not run for non-answerable posts")
}

func TestEmptyRetrievalAbstains(t *testing.T) {
	chat := &scriptedChat{answerability: "ANSWERABLE"}
	retriever := &fakeRetriever{}

	answer, err := NewPipeline(chat, retriever).Run(context.Background(), testCourse, "what is a hash join?")
	require.NoError(t, err)
	assert.Equal(t, NoResponse, answer)
}

func TestNoRelevantClustersAbstains(t *testing.T) {
	chat := &scriptedChat{answerability: "ANSWERABLE"}
	retriever := &fakeRetriever{clusters: []retrieval.Cluster{
		{Text: "unrelated content", LectureTitle: "Intro", LectureTimestamp: "00:00:05,000"},
	}}

	answer, err := NewPipeline(chat, retriever).Run(context.Background(), testCourse, "what is a hash join?")
	require.NoError(t, err)
	assert.Equal(t, NoResponse, answer)
}

func TestSynthesisUsesOnlyRelevantClusters(t *testing.T) {
	chat := &scriptedChat{
		answerability: "ANSWERABLE",
		relevance: map[string]string{
			"cluster A": `Hash joins build an in-memory table. "We hash the smaller relation."`,
		},
		finalAnswer: "A hash join builds a table [Lecture: Joins, Timestamp: 00:12:01,500].",
	}
	retriever := &fakeRetriever{clusters: []retrieval.Cluster{
		{Text: "cluster A", LectureTitle: "Joins", LectureTimestamp: "00:12:01,500"},
		{Text: "cluster B", LectureTitle: "Indexes", LectureTimestamp: "00:30:00,000"},
	}}

	answer, err := NewPipeline(chat, retriever).Run(context.Background(), testCourse, "how do hash joins work?")
	require.NoError(t, err)
	assert.Contains(t, answer, "hash join")

	// Only the relevant cluster's citation reaches the synthesis context.
	require.Len(t, chat.finalPrompts, 1)
	prompt := chat.finalPrompts[0]
	assert.Equal(t, 1, strings.Count(prompt, "[Lecture: Joins, Timestamp: 00:12:01,500]"))
	assert.NotContains(t, prompt, "Indexes")
	assert.Contains(t, prompt, "1. [Lecture: Joins, Timestamp: 00:12:01,500]")
}

func TestModelAbstentionAtSynthesis(t *testing.T) {
	chat := &scriptedChat{
		answerability: "ANSWERABLE",
		relevance: map[string]string{
			"cluster A": "Some summary with a citation.",
		},
		finalAnswer: "NO RESPONSE",
	}
	retriever := &fakeRetriever{clusters: []retrieval.Cluster{
		{Text: "cluster A", LectureTitle: "Joins", LectureTimestamp: "00:12:01,500"},
	}}

	answer, err := NewPipeline(chat, retriever).Run(context.Background(), testCourse, "how do joins work?")
	require.NoError(t, err)
	assert.Equal(t, NoResponse, answer)
}

func TestCollaboratorFailurePropagates(t *testing.T) {
	chat := &scriptedChat{err: errors.New("llm unreachable")}
	retriever := &fakeRetriever{}

	_, err := NewPipeline(chat, retriever).Run(context.Background(), testCourse, "how do joins work?")
	assert.Error(t, err)

	chat = &scriptedChat{answerability: "ANSWERABLE"}
	retriever = &fakeRetriever{err: errors.New("cassandra down")}
	_, err = NewPipeline(chat, retriever).Run(context.Background(), testCourse, "how do joins work?")
	assert.Error(t, err)
}

func TestRunAlwaysTerminal(t *testing.T) {
	// Every well-formed input, including the empty string, ends at either
	// NO RESPONSE or non-empty answer text.
	inputs := []string{"", "what is a join?", "   "}

	chat := &scriptedChat{answerability: "garbage output"}
	for _, input := range inputs {
		answer, err := NewPipeline(chat, &fakeRetriever{}).Run(context.Background(), testCourse, input)
		require.NoError(t, err)
		assert.NotEmpty(t, answer)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, store.StatusNoResponse, StatusFor(NoResponse))
	assert.Equal(t, store.StatusSuccess, StatusFor("an actual answer"))
}
