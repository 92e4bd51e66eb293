package utils

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order, coarsest first. The empty separator
// splits between runes and always succeeds.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// SplitText breaks text into chunks of at most chunkSize runes, cutting on
// the coarsest separator that yields small enough pieces and carrying up to
// overlap runes of trailing context into the next chunk. Chunks are trimmed
// and empty chunks are dropped.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 || utf8.RuneCountInString(text) <= chunkSize {
		return []string{text}
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}

	s := splitter{chunkSize: chunkSize, overlap: overlap}
	return s.split(text, DefaultSeparators)
}

type splitter struct {
	chunkSize int
	overlap   int
}

func (s splitter) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, sep)
	}

	var chunks, small []string
	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			small = append(small, piece)
			continue
		}
		if len(small) > 0 {
			chunks = append(chunks, s.merge(small, sep)...)
			small = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, strings.TrimSpace(piece))
			continue
		}
		chunks = append(chunks, s.split(piece, rest)...)
	}
	if len(small) > 0 {
		chunks = append(chunks, s.merge(small, sep)...)
	}
	return chunks
}

// merge packs pieces greedily into chunks joined by sep, keeping a tail of
// earlier pieces (at most overlap runes) at the start of each new chunk.
func (s splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)
	var chunks, current []string
	total := 0

	joinedLen := func(extra int) int {
		if len(current) > 0 {
			return total + extra + sepLen
		}
		return total + extra
	}

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if joinedLen(n) > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (joinedLen(n) > s.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}

	if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}
