package llm

import "strings"

// The model replies with free text except for three exact control tokens.
// Parsing is conservative: anything that is not the expected token is
// treated as the safe branch, never as an error.
const (
	tokenAnswerable  = "ANSWERABLE"
	tokenNotRelevant = "NOT RELEVANT"
	TokenNoResponse  = "NO RESPONSE"
)

// Answerability is the outcome of the answerability check.
type Answerability int

const (
	NotAnswerable Answerability = iota
	Answerable
)

// ParseAnswerability accepts only the literal ANSWERABLE token; malformed
// output and NOT_ANSWERABLE both mean the post is not answerable.
func ParseAnswerability(raw string) Answerability {
	if strings.TrimSpace(raw) == tokenAnswerable {
		return Answerable
	}
	return NotAnswerable
}

// Relevance is the outcome of one cluster's relevance check. Summary is
// only meaningful when Relevant is true.
type Relevance struct {
	Relevant bool
	Summary  string
}

// ParseRelevance treats the literal NOT RELEVANT token as rejection and
// anything else as a summary of the relevant content.
func ParseRelevance(raw string) Relevance {
	trimmed := strings.TrimSpace(raw)
	if trimmed == tokenNotRelevant || trimmed == "" {
		return Relevance{Relevant: false}
	}
	return Relevance{Relevant: true, Summary: trimmed}
}

// ParseAnswer returns the final answer text, or ok=false when the model
// abstained with the literal NO RESPONSE token or produced nothing.
func ParseAnswer(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == TokenNoResponse || trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// ParseKeywords splits the keyword-extraction reply into lowercase terms.
func ParseKeywords(raw string) []string {
	fields := strings.Fields(raw)
	keywords := make([]string, 0, len(fields))
	seen := make(map[string]bool)
	for _, f := range fields {
		term := strings.ToLower(f)
		if !seen[term] {
			seen[term] = true
			keywords = append(keywords, term)
		}
	}
	return keywords
}
