package qa

import (
	"fmt"
	"strings"
)

// citation renders the user-visible citation line. The bracket format is
// bit-exact; the final-answer prompt tells the model to reuse it inline.
func citation(title, timestamp string) string {
	if timestamp == "" {
		return fmt.Sprintf("[Lecture: %s]", title)
	}
	return fmt.Sprintf("[Lecture: %s, Timestamp: %s]", title, timestamp)
}

// formatContext builds the numbered context block for synthesis: one
// entry per retained cluster, citation line first, summary after.
func formatContext(relevant []relevantCluster) string {
	parts := make([]string, len(relevant))
	for i, cluster := range relevant {
		parts[i] = fmt.Sprintf("%d. %s\n%s", i+1, citation(cluster.LectureTitle, cluster.LectureTimestamp), cluster.Summary)
	}
	return strings.Join(parts, "\n\n")
}
