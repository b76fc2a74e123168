// Package server exposes the question pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/JonMunkholm/sqlask/internal/pipeline"
	"github.com/JonMunkholm/sqlask/internal/schema"
	"github.com/JonMunkholm/sqlask/internal/sqlguard"
)

const (
	defaultAskTimeout = 90 * time.Second
	schemaTimeout     = 30 * time.Second
	maxBodyBytes      = 64 << 10
)

// Asker answers questions. *pipeline.Pipeline satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string) pipeline.Answer
}

// SchemaSource is the cached schema served by /schema.
type SchemaSource interface {
	Load(ctx context.Context) error
	GetTables() []schema.Table
	HasTable(name string) bool
	TableCount() int
	GetLastRefresh() time.Time
}

// Server holds the handler dependencies.
type Server struct {
	asker      Asker
	schema     SchemaSource
	exec       pipeline.Executor
	askTimeout time.Duration
	log        *zap.Logger
	validate   *validator.Validate
}

// New creates a Server. exec may be nil, which disables /query.
func New(asker Asker, src SchemaSource, exec pipeline.Executor, askTimeout time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}
	return &Server{
		asker:      asker,
		schema:     src,
		exec:       exec,
		askTimeout: askTimeout,
		log:        log,
		validate:   validator.New(),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/ask", s.handleAsk)
	r.Post("/check", s.handleCheck)
	r.Post("/query", s.handleQuery)
	r.Get("/schema", s.handleSchema)
	r.Get("/schema/{table}", s.handleSchemaTable)
	r.Post("/schema/refresh", s.handleSchemaRefresh)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

type askRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type askResponse struct {
	ID      string `json:"id"`
	Answer  string `json:"answer"`
	Outcome string `json:"outcome"`
	SQL     string `json:"sql,omitempty"`
	Verdict string `json:"verdict,omitempty"`
	Rows    int    `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAsk always answers 200 when the body is valid; failures are reported
// in the answer text and outcome, matching the CLI.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if err := s.validate.Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required (max 2000 characters)"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.askTimeout)
	defer cancel()

	a := s.asker.Ask(ctx, req.Question)
	resp := askResponse{
		ID:      a.ID,
		Answer:  a.Text,
		Outcome: string(a.Outcome),
		SQL:     a.SQL,
		Rows:    a.Rows,
	}
	if a.SQL != "" {
		resp.Verdict = a.Verdict.String()
	}
	respondJSON(w, http.StatusOK, resp)
}

type checkRequest struct {
	SQL string `json:"sql"`
}

type checkResponse struct {
	Statement string `json:"statement,omitempty"`
	Safe      bool   `json:"safe"`
	Reason    string `json:"reason"`
	Token     string `json:"token,omitempty"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !s.decode(w, r, &req) {
		return
	}
	stmt, verdict, err := sqlguard.Check(req.SQL)
	if err != nil {
		respondJSON(w, http.StatusOK, checkResponse{Reason: string(verdict.Reason)})
		return
	}
	respondJSON(w, http.StatusOK, checkResponse{
		Statement: stmt,
		Safe:      verdict.Safe,
		Reason:    string(verdict.Reason),
		Token:     verdict.Token,
	})
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"`
	Count      int      `json:"count"`
	More       bool     `json:"more"`
	DurationMs int64    `json:"durationMs"`
	Error      string   `json:"error,omitempty"`
}

// handleQuery runs hand-written SQL through the same safety policy as
// generated SQL.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if s.exec == nil {
		respondJSON(w, http.StatusNotFound, queryResponse{Error: "direct queries are disabled"})
		return
	}
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}

	stmt, verdict, err := sqlguard.Check(req.Query)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, queryResponse{Error: "query is required"})
		return
	}
	if !verdict.Safe {
		respondJSON(w, http.StatusBadRequest, queryResponse{Error: "only read-only SELECT queries are allowed (" + verdict.String() + ")"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.askTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.exec.Query(ctx, stmt)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, queryResponse{Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, queryResponse{
		Columns:    res.Columns,
		Rows:       res.Rows,
		Count:      res.Len(),
		More:       res.Truncated,
		DurationMs: time.Since(start).Milliseconds(),
	})
}

type schemaResponse struct {
	Tables      []schema.Table `json:"tables"`
	TableCount  int            `json:"tableCount"`
	LastRefresh string         `json:"lastRefresh"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.schemaResponse())
}

// handleSchemaTable returns one cached table, matched case-insensitively.
func (s *Server) handleSchemaTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	if s.schema.HasTable(name) {
		for _, t := range s.schema.GetTables() {
			if strings.EqualFold(t.Name, name) {
				respondJSON(w, http.StatusOK, t)
				return
			}
		}
	}
	respondJSON(w, http.StatusNotFound, errorResponse{Error: "unknown table: " + name})
}

func (s *Server) handleSchemaRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), schemaTimeout)
	defer cancel()

	if err := s.schema.Load(ctx); err != nil {
		s.log.Error("schema refresh failed", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, s.schemaResponse())
}

func (s *Server) schemaResponse() schemaResponse {
	resp := schemaResponse{
		Tables:     s.schema.GetTables(),
		TableCount: s.schema.TableCount(),
	}
	if t := s.schema.GetLastRefresh(); !t.IsZero() {
		resp.LastRefresh = t.Format(time.RFC3339)
	}
	return resp
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
