package piazza

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractContent strips HTML from a post's subject and body and joins
// them into the question text handed to the QA pipeline.
func ExtractContent(subject, content string) string {
	subjectText := stripHTML(subject)
	contentText := stripHTML(content)

	combined := strings.TrimSpace(subjectText + "\n\n" + contentText)
	return combined
}

// stripHTML returns the concatenated text nodes of an HTML fragment.
// Script and style bodies are dropped.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		// Fall back to the raw text rather than lose the post
		return strings.TrimSpace(fragment)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "br" || n.Data == "p" || n.Data == "div" || n.Data == "li") {
			sb.WriteString("\n")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return strings.TrimSpace(sb.String())
}
