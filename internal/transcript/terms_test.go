package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexTerms(t *testing.T) {
	terms := IndexTerms("The hash join builds a hash table on the smaller relation.")
	assert.Equal(t, []string{"hash", "join", "builds", "table", "smaller", "relation"}, terms)
}

func TestIndexTermsCaseFolded(t *testing.T) {
	terms := IndexTerms("Cassandra CASSANDRA cassandra")
	assert.Equal(t, []string{"cassandra"}, terms)
}

func TestIndexTermsDropsNoise(t *testing.T) {
	assert.Empty(t, IndexTerms("a I to the 42 7"))
}
