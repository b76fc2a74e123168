package schema

import (
	"context"
	"database/sql"
	"fmt"
)

func loadSQLiteTables(ctx context.Context, db *sql.DB) ([]Table, error) {
	names, err := getSQLiteTableNames(ctx, db)
	if err != nil {
		return nil, err
	}

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		table := Table{Name: name}

		var pkCols []string
		table.Columns, pkCols, err = getSQLiteColumns(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", name, err)
		}
		markPrimaryKeys(&table, pkCols)

		table.ForeignKeys, err = getSQLiteForeignKeys(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("foreign keys of %s: %w", name, err)
		}

		// Exact counts are cheap at the sizes this tool targets.
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&table.RowEstimate); err != nil {
			table.RowEstimate = 0
		}

		tables = append(tables, table)
	}
	return tables, nil
}

func getSQLiteTableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func getSQLiteColumns(ctx context.Context, db *sql.DB, table string) ([]Column, []string, error) {
	query := `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`

	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		columns []Column
		pks     []string
	)
	for rows.Next() {
		var (
			col     Column
			notNull bool
			pk      int
		)
		if err := rows.Scan(&col.Name, &col.Type, &notNull, &pk); err != nil {
			return nil, nil, err
		}
		col.Nullable = !notNull && pk == 0
		if pk > 0 {
			pks = append(pks, col.Name)
		}
		columns = append(columns, col)
	}
	return columns, pks, rows.Err()
}

func getSQLiteForeignKeys(ctx context.Context, db *sql.DB, table string) ([]ForeignKey, error) {
	query := `SELECT "from", "table", COALESCE("to", '') FROM pragma_foreign_key_list(?)`

	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.ForeignTable, &fk.ForeignColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
