package document

import "strings"

// Splitter cuts text into bounded, overlapping windows, breaking at word
// boundaries where possible. Bounding the window keeps embedding cost and
// retrieval granularity independent of source document size. Sizes are in
// runes, so multi-byte text is never cut inside a character.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewSplitter creates a splitter; non-positive values fall back to the
// 500/50 defaults.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &Splitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// Split returns the overlapping chunks of text. Text at or under the
// chunk size yields a single chunk.
func (s *Splitter) Split(text string) []string {
	content := []rune(strings.TrimSpace(text))
	if len(content) == 0 {
		return nil
	}
	if len(content) <= s.ChunkSize {
		return []string{string(content)}
	}

	var chunks []string
	start := 0
	for start < len(content) {
		end := start + s.ChunkSize
		if end > len(content) {
			end = len(content)
		}

		// Break at the last word boundary inside the window.
		if end < len(content) {
			if lastSpace := lastSpaceIndex(content[start:end]); lastSpace > 0 {
				end = start + lastSpace
			}
		}

		chunk := strings.TrimSpace(string(content[start:end]))
		if len(chunk) > 0 {
			chunks = append(chunks, chunk)
		}

		if end >= len(content) {
			break
		}
		next := end - s.ChunkOverlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

func lastSpaceIndex(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
