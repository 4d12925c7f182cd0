package transcript

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9'-]*`)

// Common words that would bloat the inverted index without helping search.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "can": true, "do": true, "for": true,
	"from": true, "gonna": true, "got": true, "had": true, "has": true,
	"have": true, "he": true, "her": true, "his": true, "i": true, "if": true,
	"in": true, "is": true, "it": true, "its": true, "just": true, "like": true,
	"me": true, "my": true, "no": true, "not": true, "of": true, "on": true,
	"or": true, "our": true, "she": true, "so": true, "some": true,
	"that": true, "the": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "to": true,
	"us": true, "was": true, "we": true, "were": true, "what": true,
	"when": true, "which": true, "who": true, "will": true, "with": true,
	"would": true, "you": true, "your": true,
}

// IndexTerms extracts the distinct lowercase terms of a chunk that belong
// in the keyword inverted index. Single-letter tokens and stop words are
// dropped.
func IndexTerms(text string) []string {
	words := wordPattern.FindAllString(text, -1)

	var terms []string
	seen := make(map[string]bool)
	for _, w := range words {
		term := strings.ToLower(w)
		if len(term) < 2 || stopWords[term] || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}

	return terms
}
