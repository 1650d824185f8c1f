package port

import "docqa/internal/domain"

type Chunker interface {
	Chunk(text, source string) []domain.Chunk
}
