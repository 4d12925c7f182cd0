package transcript

import "strings"

// Frame is a single caption line from an SRT transcript.
type Frame struct {
	Text      string
	StartTime string // HH:MM:SS,mmm
	EndTime   string
}

// Sentence is a complete sentence assembled from consecutive frames,
// stamped with the start time of its first frame.
type Sentence struct {
	Text       string
	StartTime  string
	Embedding  []float32
	TokenCount int
}

// ParseSRT parses SRT transcript text into frames.
//
//	1									sequence number
//	00:00:00,000 --> 00:00:01,830		start --> end
//	I'm happy to						line
//	have you here today.				line
func ParseSRT(text string) []Frame {
	if text == "" {
		return []Frame{}
	}

	var frames []Frame
	var startTime, endTime string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isDigitOnly(line) {
			continue
		}

		if strings.Contains(line, "-->") {
			parts := strings.Split(line, "-->")
			if len(parts) == 2 {
				startTime = strings.TrimSpace(parts[0])
				endTime = strings.TrimSpace(parts[1])
			}
			continue
		}

		frames = append(frames, Frame{
			Text:      line,
			StartTime: startTime,
			EndTime:   endTime,
		})
	}

	return frames
}

// Sentences merges frames into sentences at terminal punctuation.
// countTokens supplies each sentence's token count.
func Sentences(frames []Frame, countTokens func(string) int) []Sentence {
	if len(frames) == 0 {
		return []Sentence{}
	}

	var sentences []Sentence
	var current strings.Builder
	var startTime string
	newSentence := true

	flush := func() {
		text := current.String()
		sentences = append(sentences, Sentence{
			Text:       text,
			StartTime:  startTime,
			TokenCount: countTokens(text),
		})
		current.Reset()
		newSentence = true
	}

	for _, frame := range frames {
		if newSentence {
			startTime = frame.StartTime
			newSentence = false
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(frame.Text)

		trimmed := strings.TrimSpace(frame.Text)
		if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
			flush()
		}
	}

	if current.Len() > 0 {
		flush()
	}

	return sentences
}

func isDigitOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
