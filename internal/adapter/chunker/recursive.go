package chunker

import (
	"strings"
	"unicode/utf8"

	"docqa/internal/domain"
)

// separatorLevels orders split granularity from coarse to fine:
// paragraph break, line break, sentence end, word boundary. When no
// level yields a cut point the chunker falls back to a hard character
// slice.
var separatorLevels = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? "},
	{" "},
}

// RecursiveChunker splits text into overlapping passages of at most
// chunkSize characters, cutting at the coarsest separator that fits.
// Every chunk is an exact substring of the input, and consecutive
// chunks from the same document share exactly overlap characters, so
// the original text can be reconstructed by dropping each chunk's
// overlap prefix.
type RecursiveChunker struct {
	chunkSize int
	overlap   int
}

func NewRecursiveChunker(chunkSize, overlap int) *RecursiveChunker {
	if chunkSize < 1 {
		chunkSize = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &RecursiveChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Chunk splits text into ordered chunks carrying the source identifier.
// Empty or whitespace-only input produces zero chunks.
func (c *RecursiveChunker) Chunk(text, source string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []domain.Chunk
	prevCut := 0 // end of the previous chunk's fresh content

	for {
		start := prevCut - c.overlap
		if start < 0 {
			start = 0
		}
		start = alignRuneStart(text, start)

		// Whole remainder fits in one chunk.
		if len(text)-start <= c.chunkSize {
			chunks = append(chunks, domain.Chunk{
				Text:        text[start:],
				Source:      source,
				StartOffset: start,
			})
			return chunks
		}

		// The window bound must not land inside a multibyte rune, or a
		// hard slice would produce an invalid-UTF-8 chunk.
		limit := alignRuneStart(text, start+c.chunkSize)
		if limit <= prevCut {
			_, size := utf8.DecodeRuneInString(text[prevCut:])
			limit = prevCut + size
		}

		cut := c.findCut(text, prevCut, limit)
		chunks = append(chunks, domain.Chunk{
			Text:        text[start:cut],
			Source:      source,
			StartOffset: start,
		})
		prevCut = cut
	}
}

// findCut picks the position ending the current chunk. It scans the
// window between the previous cut and the chunk size limit for the
// coarsest separator present, cutting just after it so separators stay
// attached to the leading chunk. No separator means a hard slice at the
// limit.
func (c *RecursiveChunker) findCut(text string, searchFrom, limit int) int {
	window := text[searchFrom:limit]

	for _, level := range separatorLevels {
		best := -1
		for _, sep := range level {
			if idx := strings.LastIndex(window, sep); idx >= 0 {
				if end := idx + len(sep); end > best {
					best = end
				}
			}
		}
		if best > 0 {
			return searchFrom + best
		}
	}

	return limit
}

// alignRuneStart moves i back to the start of the rune containing it.
func alignRuneStart(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// ChunkSize returns the configured maximum chunk length.
func (c *RecursiveChunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap length.
func (c *RecursiveChunker) Overlap() int {
	return c.overlap
}
