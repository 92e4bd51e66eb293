package history

import (
	"strings"

	"docqa-be/pkg/store"
)

// Transcript renders turns oldest first as "Q: ...\nA: ..." blocks joined
// by a newline. The answer line carries the parsed response, never the
// model's reasoning.
func Transcript(turns []store.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, "Q: "+t.Question+"\nA: "+t.Answer.Response)
	}
	return strings.Join(lines, "\n")
}
