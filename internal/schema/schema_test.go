package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sqlask/internal/dbexec"
)

func expenseDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := dbexec.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `
		CREATE TABLE categories (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE expenses (
			id INTEGER PRIMARY KEY,
			category_id INTEGER NOT NULL REFERENCES categories(id),
			amount REAL NOT NULL,
			note TEXT
		);
		INSERT INTO categories (id, name) VALUES (1, 'food'), (2, 'travel');
		INSERT INTO expenses (id, category_id, amount, note) VALUES
			(1, 1, 12.5, 'lunch'),
			(2, 2, 40, NULL);`)
	require.NoError(t, err)
	return db
}

func TestLoadSQLite(t *testing.T) {
	cache := NewCache(expenseDB(t), dbexec.DialectSQLite, DefaultSampleRows, nil)
	require.NoError(t, cache.Load(context.Background()))

	assert.Equal(t, 2, cache.TableCount())
	assert.True(t, cache.HasTable("EXPENSES"))
	assert.False(t, cache.HasTable("budgets"))
	assert.False(t, cache.GetLastRefresh().IsZero())

	tables := cache.GetTables()
	require.Len(t, tables, 2)
	assert.Equal(t, "categories", tables[0].Name)

	expenses := tables[1]
	assert.Equal(t, "expenses", expenses.Name)
	assert.Equal(t, int64(2), expenses.RowEstimate)
	require.Len(t, expenses.Columns, 4)
	assert.Equal(t, Column{Name: "id", Type: "INTEGER", IsPK: true}, expenses.Columns[0])
	assert.Equal(t, Column{Name: "note", Type: "TEXT", Nullable: true}, expenses.Columns[3])
	assert.Equal(t, []ForeignKey{{Column: "category_id", ForeignTable: "categories", ForeignColumn: "id"}}, expenses.ForeignKeys)
	assert.Equal(t, [][]string{{"1", "1", "12.5", "lunch"}, {"2", "2", "40", "NULL"}}, expenses.Samples)
}

func TestToText(t *testing.T) {
	cache := NewCache(expenseDB(t), dbexec.DialectSQLite, DefaultSampleRows, nil)
	require.NoError(t, cache.Load(context.Background()))

	text := cache.ToText()
	for _, line := range []string{
		"TABLE: categories (~2 rows)",
		"  - id: INTEGER, PK, NOT NULL",
		"  - name: TEXT, NOT NULL",
		"TABLE: expenses (~2 rows)",
		"  - category_id: INTEGER, NOT NULL -> categories.id",
		"  - amount: REAL, NOT NULL",
		"  - note: TEXT\n",
		"  SAMPLE ROWS (id | category_id | amount | note):",
		"    1 | 1 | 12.5 | lunch",
		"    2 | 2 | 40 | NULL",
	} {
		assert.Contains(t, text, line)
	}
}

func TestSamplesDisabled(t *testing.T) {
	cache := NewCache(expenseDB(t), dbexec.DialectSQLite, 0, nil)
	require.NoError(t, cache.Load(context.Background()))

	assert.NotContains(t, cache.ToText(), "SAMPLE ROWS")
}

func TestSchemaTextLoadsLazily(t *testing.T) {
	cache := NewCache(expenseDB(t), dbexec.DialectSQLite, 1, nil)
	assert.Equal(t, "(no tables found)", cache.ToText())

	text, err := cache.SchemaText(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "TABLE: expenses")
	assert.Equal(t, 2, cache.TableCount())
}

func TestSchemaTextEmptyDatabase(t *testing.T) {
	db, err := dbexec.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer db.Close()

	cache := NewCache(db, dbexec.DialectSQLite, 1, nil)
	_, err = cache.SchemaText(context.Background())
	assert.ErrorIs(t, err, ErrNoTables)
}

func TestSchemaTextClosedDatabase(t *testing.T) {
	db := expenseDB(t)
	require.NoError(t, db.Close())

	cache := NewCache(db, dbexec.DialectSQLite, 1, nil)
	_, err := cache.SchemaText(context.Background())
	assert.Error(t, err)
}

func TestLoadUnknownDialect(t *testing.T) {
	cache := NewCache(expenseDB(t), "oracle", 1, nil)
	assert.ErrorIs(t, cache.Load(context.Background()), dbexec.ErrUnsupportedDriver)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"expenses"`, quoteIdent("expenses"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}
