package domain

import "time"

// Document is a source file pulled from object storage. It only lives
// for the duration of ingestion; the index stores chunks, not documents.
type Document struct {
	Source string
	Text   string
}

// Chunk is a bounded passage of a document with source provenance.
// StartOffset is the byte offset of the chunk within the extracted text.
type Chunk struct {
	Text        string
	Source      string
	StartOffset int
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Answer is the result of one question. UsedRefusal is set when the
// model returned the canonical refusal message, signalling that the
// indexed documents did not contain the answer.
type Answer struct {
	Text        string
	UsedRefusal bool
}

// LogEntry is one question/answer pair recorded for audit.
type LogEntry struct {
	Question      string
	Answer        string
	ViolationType string
	Severity      string
	Timestamp     time.Time
}

// IngestState tracks the ingestion batch through its phases.
type IngestState int

const (
	StateNotStarted IngestState = iota
	StateCheckingIndex
	StateSkipped
	StateDownloading
	StateExtracting
	StateChunking
	StateEmbeddingAndIndexing
	StateDone
)

func (s IngestState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateCheckingIndex:
		return "checking_index"
	case StateSkipped:
		return "skipped"
	case StateDownloading:
		return "downloading"
	case StateExtracting:
		return "extracting"
	case StateChunking:
		return "chunking"
	case StateEmbeddingAndIndexing:
		return "embedding_and_indexing"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	State          IngestState
	FilesProcessed int
	FilesSkipped   int
	ChunksIndexed  int
	Warning        string
	Errors         []string
}
