package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnswerability(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Answerability
	}{
		{"exact token", "ANSWERABLE", Answerable},
		{"token with whitespace", "  ANSWERABLE\n", Answerable},
		{"not answerable token", "NOT_ANSWERABLE", NotAnswerable},
		{"lowercase is malformed", "answerable", NotAnswerable},
		{"chatty output is malformed", "The post is ANSWERABLE because...", NotAnswerable},
		{"empty", "", NotAnswerable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAnswerability(tt.raw))
		})
	}
}

func TestParseRelevance(t *testing.T) {
	r := ParseRelevance("NOT RELEVANT")
	assert.False(t, r.Relevant)

	r = ParseRelevance("  NOT RELEVANT  ")
	assert.False(t, r.Relevant)

	r = ParseRelevance("")
	assert.False(t, r.Relevant)

	r = ParseRelevance("The lecture covers hash joins. \"We build a hash table on the smaller relation.\"")
	assert.True(t, r.Relevant)
	assert.Contains(t, r.Summary, "hash joins")
}

func TestParseAnswer(t *testing.T) {
	_, ok := ParseAnswer("NO RESPONSE")
	assert.False(t, ok)

	_, ok = ParseAnswer("  NO RESPONSE\n")
	assert.False(t, ok)

	_, ok = ParseAnswer("")
	assert.False(t, ok)

	text, ok := ParseAnswer("A hash join builds a table in memory [Lecture: Joins, Timestamp: 00:12:01,500].")
	assert.True(t, ok)
	assert.NotEmpty(t, text)
}

func TestParseKeywords(t *testing.T) {
	keywords := ParseKeywords("Join joins HASH  partition\n")
	assert.Equal(t, []string{"join", "joins", "hash", "partition"}, keywords)

	assert.Empty(t, ParseKeywords("   "))
}
