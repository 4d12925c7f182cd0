package piazza

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContent(t *testing.T) {
	text := ExtractContent(
		"<p>Hash join question</p>",
		"<p>How does the <b>build</b> phase work?</p><p>Thanks!</p>",
	)

	assert.Contains(t, text, "Hash join question")
	assert.Contains(t, text, "How does the build phase work?")
	assert.NotContains(t, text, "<p>")
	assert.NotContains(t, text, "<b>")
}

func TestExtractContentPlainText(t *testing.T) {
	assert.Equal(t, "just a subject", ExtractContent("just a subject", ""))
}

func TestExtractContentEmpty(t *testing.T) {
	assert.Equal(t, "", ExtractContent("", ""))
}

func TestStripHTMLDropsScript(t *testing.T) {
	text := stripHTML("<div>visible</div><script>alert(1)</script>")
	assert.Contains(t, text, "visible")
	assert.NotContains(t, text, "alert")
}
