// Package server exposes the assistant over HTTP. The JSON API mirrors
// the two answering modes: /api/answer works from search snippets
// alone, while /api/index followed by /api/ask runs retrieval over
// scraped pages.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dhanyavarthini/Techie-S-Assistant"
	"github.com/Dhanyavarthini/Techie-S-Assistant/rag"
)

// Assistant is the part of the assistant API the server needs. It is
// an interface so handler tests can stub the expensive pipeline.
type Assistant interface {
	AnswerFromSnippets(ctx context.Context, query, reformulated string) (*assistant.Answer, error)
	ReformulateQuery(ctx context.Context, query string) (string, error)
	SearchAndIndex(ctx context.Context, query string) ([]string, error)
	Ask(ctx context.Context, query string) (*assistant.Answer, error)
	RelatedQueries(ctx context.Context, query string) ([]string, error)
	Sources() []string
	ResetConversation()
}

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Metrics may be nil to disable usage stats collection.
	Metrics  *Metrics
	Registry *prometheus.Registry
	Logger   rag.Logger
}

type Server struct {
	assistant Assistant
	opts      Options
	logger    rag.Logger
	http      *http.Server
}

func New(a Assistant, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8501"
	}
	if opts.Logger == nil {
		opts.Logger = rag.GlobalLogger
	}
	s := &Server{
		assistant: a,
		opts:      opts,
		logger:    opts.Logger,
	}
	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/answer", s.instrument("answer", s.handleAnswer))
	mux.HandleFunc("POST /api/index", s.instrument("index", s.handleIndex))
	mux.HandleFunc("POST /api/ask", s.instrument("ask", s.handleAsk))
	mux.HandleFunc("POST /api/reset", s.instrument("reset", s.handleReset))
	mux.HandleFunc("GET /api/sources", s.instrument("sources", s.handleSources))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.opts.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// ListenAndServe blocks until the context is canceled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.opts.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return s.http.Shutdown(shutdownCtx)
}

type queryRequest struct {
	Query string `json:"query"`
}

type answerResponse struct {
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources"`
	RelatedQueries []string `json:"related_queries,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusWriter remembers the status code for metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		s.opts.Metrics.observe(endpoint, strconv.Itoa(sw.status), time.Since(start).Seconds())
		s.logger.Debug("request handled", "endpoint", endpoint, "status", sw.status, "duration", time.Since(start).String())
	}
}

func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return "", false
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("query must not be empty"))
		return "", false
	}
	return req.Query, true
}

// handleAnswer answers from search snippets. The query is condensed
// against the conversation first, then related query suggestions are
// generated from the condensed form concurrently with the answer, so
// follow-up suggestions reflect the conversation context.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	query, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}

	condensed, err := s.assistant.ReformulateQuery(r.Context(), query)
	if err != nil || condensed == "" {
		if err != nil {
			s.logger.Warn("query reformulation failed, using raw query", "error", err)
		}
		condensed = query
	}

	type relatedResult struct {
		queries []string
		err     error
	}
	relatedCh := make(chan relatedResult, 1)
	go func() {
		queries, err := s.assistant.RelatedQueries(r.Context(), condensed)
		relatedCh <- relatedResult{queries: queries, err: err}
	}()

	answer, err := s.assistant.AnswerFromSnippets(r.Context(), query, condensed)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	related := <-relatedCh
	if related.err != nil {
		s.logger.Warn("related queries failed", "error", related.err)
	}

	s.writeJSON(w, http.StatusOK, answerResponse{
		Answer:         answer.Answer,
		Sources:        answer.Sources,
		RelatedQueries: related.queries,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	query, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}
	sources, err := s.assistant.SearchAndIndex(r.Context(), query)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sources": sources})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	query, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}
	answer, err := s.assistant.Ask(r.Context(), query)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, answerResponse{
		Answer:  answer.Answer,
		Sources: answer.Sources,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.assistant.ResetConversation()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"sources": s.assistant.Sources()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Error("request failed", "status", status, "error", err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
