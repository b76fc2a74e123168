// Package pipeline answers natural-language questions with read-only SQL.
//
// A request moves through generation, extraction, safety validation,
// execution and explanation. Every failure is converted into a fixed answer
// string; nothing is retried and nothing is shared between requests.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JonMunkholm/sqlask/internal/compact"
	"github.com/JonMunkholm/sqlask/internal/dbexec"
	"github.com/JonMunkholm/sqlask/internal/llm"
	"github.com/JonMunkholm/sqlask/internal/sqlguard"
	"github.com/JonMunkholm/sqlask/internal/temporal"
)

// SchemaProvider describes the database for the generation prompt.
type SchemaProvider interface {
	SchemaText(ctx context.Context) (string, error)
}

// Model completes prompts. llm.Client satisfies it.
type Model interface {
	Complete(ctx context.Context, req llm.Request) (llm.Completion, error)
}

// Executor runs a validated statement.
type Executor interface {
	Query(ctx context.Context, stmt string) (dbexec.Result, error)
}

// Answer is the result of one Ask.
type Answer struct {
	ID       string
	Question string
	Text     string
	Outcome  Outcome
	// SQL is the extracted candidate statement, if extraction succeeded.
	SQL     string
	Verdict sqlguard.Verdict
	Rows    int
	Err     error
	Trace   []State
}

// Pipeline holds the collaborators shared by all requests.
type Pipeline struct {
	schema SchemaProvider
	model  Model
	exec   Executor

	clock        temporal.Clock
	dialect      string
	maxTokens    int
	queryTimeout time.Duration
	log          *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the wall clock used for temporal grounding.
func WithClock(c temporal.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithDialect names the SQL dialect in the generation prompt.
func WithDialect(d string) Option {
	return func(p *Pipeline) { p.dialect = d }
}

// WithMaxTokens caps each model reply.
func WithMaxTokens(n int) Option {
	return func(p *Pipeline) { p.maxTokens = n }
}

// WithQueryTimeout bounds the database call. Zero means no extra bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.queryTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a Pipeline.
func New(schema SchemaProvider, model Model, exec Executor, opts ...Option) *Pipeline {
	p := &Pipeline{
		schema: schema,
		model:  model,
		exec:   exec,
		clock:  time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ask answers question. It always returns an Answer with non-empty Text.
func (p *Pipeline) Ask(ctx context.Context, question string) Answer {
	a := &Answer{
		ID:       uuid.NewString(),
		Question: question,
		Trace:    []State{StateInit},
	}
	log := p.log.With(zap.String("request_id", a.ID))
	start := time.Now()

	err := p.run(ctx, a, log)
	switch {
	case err != nil && a.Outcome == OutcomeRejected:
		a.Err = err
		a.Text = AnswerUnsafeQuery
		a.Trace = append(a.Trace, StateDone)
	case err != nil:
		a.Err = err
		a.Outcome = OutcomeFailed
		a.Text = answerFor(err)
		a.Trace = append(a.Trace, StateError)
		log.Warn("question failed", zap.Error(err), zap.String("sql", a.SQL))
	default:
		a.Trace = append(a.Trace, StateDone)
	}

	log.Info("question answered",
		zap.String("outcome", string(a.Outcome)),
		zap.Int("rows", a.Rows),
		zap.Duration("duration", time.Since(start)))
	return *a
}

func (p *Pipeline) run(ctx context.Context, a *Answer, log *zap.Logger) error {
	schemaText, err := p.schema.SchemaText(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaUnavailable, err)
	}
	a.Trace = append(a.Trace, StateSchemaLoaded)

	now := temporal.Now(p.clock)
	req, err := llm.GenerationPrompt(llm.GenerationVars{
		Schema:         schemaText,
		Question:       a.Question,
		CurrentDateIST: now.NowText,
		CurrentYear:    now.Year,
		Dialect:        dialectName(p.dialect),
	})
	if err != nil {
		return fmt.Errorf("%w: build prompt: %w", ErrGeneration, err)
	}
	req.MaxTokens = p.maxTokens

	gen, err := p.model.Complete(ctx, req)
	if errors.Is(err, llm.ErrEmptyResponse) {
		// A blank reply is an empty generation, not a provider failure.
		a.Trace = append(a.Trace, StateGenerated)
		return fmt.Errorf("%w: %w", ErrEmptyGeneration, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	a.Trace = append(a.Trace, StateGenerated)
	log.Debug("sql generated", zap.String("raw", gen.Text), zap.Int("tokens", gen.Tokens))

	stmt, err := sqlguard.Extract(llm.StripCodeFence(gen.Text))
	if err != nil {
		return err
	}
	a.SQL = stmt
	a.Trace = append(a.Trace, StateExtracted)

	a.Verdict = sqlguard.Validate(stmt)
	a.Trace = append(a.Trace, StateValidated)
	if !a.Verdict.Safe {
		a.Outcome = OutcomeRejected
		log.Warn("generated sql rejected", zap.String("sql", stmt), zap.Stringer("verdict", a.Verdict))
		return fmt.Errorf("%w: %s", ErrUnsafeQuery, a.Verdict)
	}

	execCtx := ctx
	if p.queryTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, p.queryTimeout)
		defer cancel()
	}
	res, err := p.exec.Query(execCtx, stmt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecution, err)
	}
	a.Rows = res.Len()
	a.Trace = append(a.Trace, StateExecuted)

	if res.Empty() {
		a.Outcome = OutcomeNoResult
		a.Text = AnswerNoResult
		return nil
	}

	resultText, err := compact.Encode(res)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExplanation, err)
	}
	req, err = llm.ExplanationPrompt(llm.ExplanationVars{Question: a.Question, Result: resultText})
	if err != nil {
		return fmt.Errorf("%w: build prompt: %w", ErrExplanation, err)
	}
	req.MaxTokens = p.maxTokens

	exp, err := p.model.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExplanation, err)
	}
	text := strings.TrimSpace(exp.Text)
	if text == "" {
		return fmt.Errorf("%w: %w", ErrExplanation, llm.ErrEmptyResponse)
	}
	a.Trace = append(a.Trace, StateSummarized)

	a.Outcome = OutcomeAnswered
	a.Text = text
	return nil
}

func dialectName(d string) string {
	if d == dbexec.DialectSQLite {
		return "SQLite"
	}
	return "PostgreSQL"
}
