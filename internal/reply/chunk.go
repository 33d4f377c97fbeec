// Package reply splits transcript text into transport-sized chunks and
// sends them back to the origin chat in order.
package reply

import "github.com/rivo/uniseg"

// Chunk splits text into pieces of at most maxRunes runes without ever
// splitting a grapheme cluster. Concatenating the result reproduces text
// exactly; order follows the source text. A cluster wider than maxRunes
// is emitted as its own oversized chunk rather than corrupted.
func Chunk(text string, maxRunes int) []string {
	if text == "" {
		return nil
	}
	if maxRunes <= 0 {
		return []string{text}
	}

	chunks := make([]string, 0, len(text)/maxRunes+1)
	var (
		start      int
		chunkRunes int
	)

	state := -1
	remaining := text
	offset := 0
	for len(remaining) > 0 {
		cluster, rest, _, nextState := uniseg.FirstGraphemeClusterInString(remaining, state)
		clusterRunes := len([]rune(cluster))

		if chunkRunes > 0 && chunkRunes+clusterRunes > maxRunes {
			chunks = append(chunks, text[start:offset])
			start = offset
			chunkRunes = 0
		}

		chunkRunes += clusterRunes
		offset += len(cluster)
		remaining = rest
		state = nextState
	}

	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	return chunks
}
