// Package server exposes the question answering service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"

	"docqa/internal/port"
	"docqa/internal/usecase"
)

// Server wires the answer engine and chat log into HTTP handlers.
type Server struct {
	answers *usecase.AnswerUseCase
	index   port.VectorIndex
	llm     port.LLM
	chatLog port.ChatLog
	logger  *log.Logger

	mu            sync.RWMutex
	lastIngestErr string
}

func New(
	answers *usecase.AnswerUseCase,
	index port.VectorIndex,
	llm port.LLM,
	chatLog port.ChatLog,
	logger *log.Logger,
) *Server {
	return &Server{
		answers: answers,
		index:   index,
		llm:     llm,
		chatLog: chatLog,
		logger:  logger,
	}
}

// SetIngestError records the last ingestion failure for /health.
func (s *Server) SetIngestError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.lastIngestErr = ""
	} else {
		s.lastIngestErr = err.Error()
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ask", s.handleAsk)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/health", s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe blocks until the context is canceled or the listener
// fails, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Response string `json:"response"`
}

type historyEntry struct {
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	ViolationType string    `json:"violation_type,omitempty"`
	Severity      string    `json:"severity,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Question field is required"})
		return
	}

	answer := s.answers.Answer(r.Context(), question)
	status := http.StatusOK
	if answer.Text == usecase.UnavailableText {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, askResponse{Response: answer.Text})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := s.chatLog.History(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("history query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load history"})
		return
	}
	history := make([]historyEntry, len(entries))
	for i, e := range entries {
		history[i] = historyEntry{
			Question:      e.Question,
			Answer:        e.Answer,
			ViolationType: e.ViolationType,
			Severity:      e.Severity,
			Timestamp:     e.Timestamp,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	ingestErr := s.lastIngestErr
	s.mu.RUnlock()

	indexLoaded := false
	if s.index.Available() {
		if n, err := s.index.Count(); err == nil && n > 0 {
			indexLoaded = true
		}
	}
	dbConnected := s.chatLog.Available()

	healthy := indexLoaded && s.llm.Available()
	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":               status,
		"index_loaded":         indexLoaded,
		"last_ingestion_error": ingestErr,
		"database_connected":   dbConnected,
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
