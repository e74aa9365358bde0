package utils

import (
	"strings"
	"unicode"
)

// SplitText splits text into chunks of at most chunkSize runes, each starting
// overlap runes before the previous one ended. Cuts prefer the last whitespace
// in the final fifth of a window so words stay whole. Empty input yields no
// chunks; the returned slice has no empty entries, so its indices are the
// contiguous chunk indices.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	totalLen := len(runes)
	if totalLen == 0 {
		return nil
	}
	if chunkSize <= 0 || totalLen <= chunkSize {
		return []string{string(runes)}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < totalLen {
		end := start + chunkSize
		if end >= totalLen {
			chunks = appendChunk(chunks, runes[start:])
			break
		}

		end = wordBoundary(runes, start, end, chunkSize)
		chunks = appendChunk(chunks, runes[start:end])

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

func wordBoundary(runes []rune, start, end, chunkSize int) int {
	floor := end - chunkSize/5
	if floor <= start {
		return end
	}
	for i := end; i > floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return end
}

func appendChunk(chunks []string, piece []rune) []string {
	s := strings.TrimSpace(string(piece))
	if s == "" {
		return chunks
	}
	return append(chunks, s)
}
