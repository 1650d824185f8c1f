package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// RefusalText is the exact sentence the model is instructed to emit
// when the retrieved excerpts do not contain the answer. Detection
// compares against this same constant, so the two can never drift.
const RefusalText = "I am sorry, but the answer to your question is not in the provided documents."

// UnavailableText is returned when the model or the index cannot be
// reached. It is a user-facing message, not an error.
const UnavailableText = "The question answering service is temporarily unavailable. Please try again later."

// internalErrorText hides transient upstream failures from users.
const internalErrorText = "Something went wrong while answering your question. Please try again."

// AnswerUseCase answers questions from the indexed documents only.
type AnswerUseCase struct {
	embedder port.Embedder
	index    port.VectorIndex
	llm      port.LLM
	chatLog  port.ChatLog
	logger   *log.Logger
	topK     int
}

func NewAnswerUseCase(
	embedder port.Embedder,
	index port.VectorIndex,
	llm port.LLM,
	chatLog port.ChatLog,
	logger *log.Logger,
	topK int,
) *AnswerUseCase {
	if topK <= 0 {
		topK = 4
	}
	return &AnswerUseCase{
		embedder: embedder,
		index:    index,
		llm:      llm,
		chatLog:  chatLog,
		logger:   logger,
		topK:     topK,
	}
}

// Answer runs retrieval and a single generation call. Every outcome is
// a well-formed Answer; failures map to fixed user-facing messages.
func (u *AnswerUseCase) Answer(ctx context.Context, question string) domain.Answer {
	if !u.llm.Available() || !u.index.Available() {
		return domain.Answer{Text: UnavailableText}
	}

	answer, err := u.answer(ctx, question)
	if err != nil {
		u.logger.Error().Err(err).Msg("answer pipeline failed")
		return domain.Answer{Text: internalErrorText}
	}

	u.record(ctx, question, answer)
	return answer
}

func (u *AnswerUseCase) answer(ctx context.Context, question string) (domain.Answer, error) {
	vectors, err := u.embedder.Embed(ctx, []string{question})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed question: %w", err)
	}

	// An empty result set still goes to the model: the prompt contract
	// makes it refuse, and the exchange is logged like any other.
	scored, err := u.index.Search(vectors[0], u.topK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("search index: %w", err)
	}

	raw, err := u.llm.Generate(ctx, buildPrompt(question, scored))
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate: %w", err)
	}

	text := strings.TrimSpace(raw)
	return domain.Answer{Text: text, UsedRefusal: text == RefusalText}, nil
}

// record writes the exchange to the chat log. Failures are logged and
// swallowed; auditing never blocks an answer.
func (u *AnswerUseCase) record(ctx context.Context, question string, answer domain.Answer) {
	entry := domain.LogEntry{
		Question:  question,
		Answer:    answer.Text,
		Timestamp: time.Now().UTC(),
	}
	if answer.UsedRefusal {
		entry.ViolationType = "out_of_context"
		entry.Severity = "low"
	}
	if err := u.chatLog.Record(ctx, entry); err != nil {
		u.logger.Warn().Err(err).Msg("failed to record chat log entry")
	}
}

func buildPrompt(question string, scored []domain.ScoredChunk) string {
	var sb strings.Builder
	sb.WriteString("You are a question answering assistant. Answer the question using ONLY the document excerpts below.\n")
	sb.WriteString("Cite the source file inline where possible.\n")
	sb.WriteString("If the excerpts do not contain the information needed to answer, reply with exactly this sentence and nothing else:\n")
	sb.WriteString(RefusalText)
	sb.WriteString("\n\nDocument excerpts:\n")
	if len(scored) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, s := range scored {
		sb.WriteString(fmt.Sprintf("--- Source: %s ---\n", s.Chunk.Source))
		sb.WriteString(s.Chunk.Text)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer:")
	return sb.String()
}
