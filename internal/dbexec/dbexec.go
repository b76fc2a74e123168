// Package dbexec opens the analytics database and runs validated SELECT statements.
package dbexec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxRows caps the rows read from a single statement.
const DefaultMaxRows = 1000

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Result holds the rows returned by a SELECT.
type Result struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Len returns the number of rows.
func (r Result) Len() int {
	return len(r.Rows)
}

// Empty reports whether the result has no rows.
func (r Result) Empty() bool {
	return len(r.Rows) == 0
}

// Records returns the rows as column-keyed maps.
func (r Result) Records() []map[string]any {
	records := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// Executor runs statements against db.
type Executor struct {
	db      *sql.DB
	dialect string
	maxRows int
	log     *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxRows sets the row cap. Values <= 0 keep the default.
func WithMaxRows(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxRows = n
		}
	}
}

// WithLogger sets the executor's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Executor. dialect is one of the values returned by Dialect.
func New(db *sql.DB, dialect string, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		dialect: dialect,
		maxRows: DefaultMaxRows,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the executor's SQL dialect.
func (e *Executor) Dialect() string {
	return e.dialect
}

// Query runs stmt and reads at most the configured number of rows.
//
// Postgres statements run inside a read-only transaction. The transaction is
// always rolled back.
func (e *Executor) Query(ctx context.Context, stmt string) (Result, error) {
	start := time.Now()

	tx, err := e.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: e.dialect == DialectPostgres})
	if err != nil {
		return Result{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, stmt)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}

	res := Result{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		if len(res.Rows) >= e.maxRows {
			res.Truncated = true
			break
		}
		values, err := scanRow(rows, len(columns))
		if err != nil {
			return Result{}, err
		}
		res.Rows = append(res.Rows, normalizeRow(values))
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	e.log.Debug("statement executed",
		zap.Int("rows", len(res.Rows)),
		zap.Bool("truncated", res.Truncated),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

func scanRow(rows *sql.Rows, numCols int) ([]any, error) {
	values := make([]any, numCols)
	ptrs := make([]any, numCols)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

func normalizeRow(values []any) []any {
	row := make([]any, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			row[i] = nil
		case []byte:
			row[i] = string(val)
		case time.Time:
			row[i] = val.Format(time.RFC3339Nano)
		default:
			row[i] = val
		}
	}
	return row
}

// FormatValue renders a normalized value as text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
