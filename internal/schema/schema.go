// Package schema provides database schema introspection and caching for LLM context.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JonMunkholm/sqlask/internal/dbexec"
)

// DefaultSampleRows is the number of example rows shown per table.
const DefaultSampleRows = 3

// ErrNoTables is returned when introspection finds nothing to describe.
var ErrNoTables = errors.New("no tables found")

// Cache holds the database schema information for LLM context.
type Cache struct {
	Tables      []Table
	LastRefresh time.Time
	mu          sync.RWMutex

	db         *sql.DB
	dialect    string
	sampleRows int
	log        *zap.Logger
}

// Table represents a database table and its structure.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
	RowEstimate int64
	Samples     [][]string
}

// Column represents a table column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	IsPK     bool
	Comment  string
}

// ForeignKey represents a foreign key relationship.
type ForeignKey struct {
	Column        string
	ForeignTable  string
	ForeignColumn string
}

// NewCache creates an empty schema cache for db. sampleRows < 0 disables samples.
func NewCache(db *sql.DB, dialect string, sampleRows int, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		db:         db,
		dialect:    dialect,
		sampleRows: sampleRows,
		log:        log,
	}
}

// Load fetches the schema from the database and caches it.
func (c *Cache) Load(ctx context.Context) error {
	var (
		tables []Table
		err    error
	)
	switch c.dialect {
	case dbexec.DialectPostgres:
		tables, err = loadPostgresTables(ctx, c.db)
	case dbexec.DialectSQLite:
		tables, err = loadSQLiteTables(ctx, c.db)
	default:
		return fmt.Errorf("%w: dialect %q", dbexec.ErrUnsupportedDriver, c.dialect)
	}
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	if c.sampleRows > 0 {
		for i := range tables {
			samples, err := loadSamples(ctx, c.db, c.dialect, tables[i], c.sampleRows)
			if err != nil {
				// Non-fatal: describe the table without examples
				c.log.Warn("sample rows unavailable", zap.String("table", tables[i].Name), zap.Error(err))
				continue
			}
			tables[i].Samples = samples
		}
	}

	c.mu.Lock()
	c.Tables = tables
	c.LastRefresh = time.Now()
	c.mu.Unlock()

	c.log.Info("schema loaded", zap.Int("tables", len(tables)), zap.String("dialect", c.dialect))
	return nil
}

// SchemaText returns the schema description, loading it on first use.
func (c *Cache) SchemaText(ctx context.Context) (string, error) {
	if c.TableCount() == 0 {
		if err := c.Load(ctx); err != nil {
			return "", err
		}
		if c.TableCount() == 0 {
			return "", ErrNoTables
		}
	}
	return c.ToText(), nil
}

// GetTables returns a copy of the cached tables.
func (c *Cache) GetTables() []Table {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tables := make([]Table, len(c.Tables))
	copy(tables, c.Tables)
	return tables
}

// HasTable checks if a table exists in the cache.
func (c *Cache) HasTable(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.Tables {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

// ToText serializes the schema to a text format suitable for LLM prompts.
func (c *Cache) ToText() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.Tables) == 0 {
		return "(no tables found)"
	}

	var sb strings.Builder
	for i, table := range c.Tables {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(tableToText(table))
	}
	return sb.String()
}

// TableCount returns the number of cached tables.
func (c *Cache) TableCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Tables)
}

// GetLastRefresh returns when the schema was last refreshed.
func (c *Cache) GetLastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastRefresh
}

func tableToText(t Table) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TABLE: %s", t.Name)
	if t.RowEstimate > 0 {
		fmt.Fprintf(&sb, " (~%d rows)", t.RowEstimate)
	}
	sb.WriteString("\n")

	for _, col := range t.Columns {
		fmt.Fprintf(&sb, "  - %s: %s", col.Name, col.Type)

		var attrs []string
		if col.IsPK {
			attrs = append(attrs, "PK")
		}
		if !col.Nullable {
			attrs = append(attrs, "NOT NULL")
		}
		if len(attrs) > 0 {
			sb.WriteString(", " + strings.Join(attrs, ", "))
		}

		// Show FK relationship inline
		for _, fk := range t.ForeignKeys {
			if fk.Column == col.Name {
				fmt.Fprintf(&sb, " -> %s.%s", fk.ForeignTable, fk.ForeignColumn)
				break
			}
		}

		if col.Comment != "" {
			fmt.Fprintf(&sb, " // %s", col.Comment)
		}
		sb.WriteString("\n")
	}

	if len(t.Samples) > 0 {
		names := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			names[i] = col.Name
		}
		fmt.Fprintf(&sb, "  SAMPLE ROWS (%s):\n", strings.Join(names, " | "))
		for _, row := range t.Samples {
			fmt.Fprintf(&sb, "    %s\n", strings.Join(row, " | "))
		}
	}

	return sb.String()
}

func markPrimaryKeys(table *Table, pkCols []string) {
	for i := range table.Columns {
		for _, pk := range pkCols {
			if table.Columns[i].Name == pk {
				table.Columns[i].IsPK = true
				break
			}
		}
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func loadSamples(ctx context.Context, db *sql.DB, dialect string, t Table, n int) ([][]string, error) {
	if len(t.Columns) == 0 {
		return nil, nil
	}
	cols := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = quoteIdent(col.Name)
	}
	table := quoteIdent(t.Name)
	if dialect == dbexec.DialectPostgres {
		table = quoteIdent("public") + "." + table
	}
	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d", strings.Join(cols, ", "), table, n)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples [][]string
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				row[i] = "NULL"
				continue
			}
			row[i] = dbexec.FormatValue(v)
		}
		samples = append(samples, row)
	}
	return samples, rows.Err()
}
