package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRT = `1
00:00:00,000 --> 00:00:01,830
I'm happy to
have you here today.

2
00:00:01,910 --> 00:00:03,610
As I'm sure you're all
aware, there's going

3
00:00:03,700 --> 00:00:05,200
to be a lot to cover.
`

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func TestParseSRT(t *testing.T) {
	frames := ParseSRT(sampleSRT)
	require.Len(t, frames, 6)

	assert.Equal(t, "I'm happy to", frames[0].Text)
	assert.Equal(t, "00:00:00,000", frames[0].StartTime)
	assert.Equal(t, "00:00:01,830", frames[0].EndTime)

	// Frames inherit the most recent timestamp line
	assert.Equal(t, "00:00:01,910", frames[2].StartTime)
	assert.Equal(t, "00:00:03,700", frames[4].StartTime)
}

func TestParseSRTEmpty(t *testing.T) {
	assert.Empty(t, ParseSRT(""))
}

func TestSentences(t *testing.T) {
	frames := ParseSRT(sampleSRT)
	sentences := Sentences(frames, wordCount)
	require.Len(t, sentences, 2)

	assert.Equal(t, "I'm happy to have you here today.", sentences[0].Text)
	assert.Equal(t, "00:00:00,000", sentences[0].StartTime)
	assert.Equal(t, 7, sentences[0].TokenCount)

	// Second sentence spans two caption blocks and starts at the first
	assert.Equal(t, "As I'm sure you're all aware, there's going to be a lot to cover.", sentences[1].Text)
	assert.Equal(t, "00:00:01,910", sentences[1].StartTime)
}

func TestSentencesTrailingText(t *testing.T) {
	frames := []Frame{
		{Text: "this never terminates", StartTime: "00:01:00,000"},
	}
	sentences := Sentences(frames, wordCount)
	require.Len(t, sentences, 1)
	assert.Equal(t, "this never terminates", sentences[0].Text)
}
