package schema

import (
	"context"
	"database/sql"
)

const (
	pgTablesQuery = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	pgColumnsQuery = `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' AS nullable,
			COALESCE(pgd.description, '') AS comment
		FROM information_schema.columns c
		LEFT JOIN pg_catalog.pg_statio_all_tables st
			ON st.schemaname = c.table_schema AND st.relname = c.table_name
		LEFT JOIN pg_catalog.pg_description pgd
			ON pgd.objoid = st.relid AND pgd.objsubid = c.ordinal_position
		WHERE c.table_schema = 'public'
		ORDER BY c.table_name, c.ordinal_position`

	pgPrimaryKeysQuery = `
		SELECT tc.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = 'public'
		ORDER BY tc.table_name, kcu.ordinal_position`

	pgForeignKeysQuery = `
		SELECT
			tc.table_name,
			kcu.column_name,
			ccu.table_name AS foreign_table,
			ccu.column_name AS foreign_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = 'public'`

	pgRowEstimatesQuery = `
		SELECT relname, GREATEST(reltuples, 0)::bigint
		FROM pg_class
		WHERE relnamespace = 'public'::regnamespace
		  AND relkind = 'r'`
)

func loadPostgresTables(ctx context.Context, db *sql.DB) ([]Table, error) {
	var names []string
	err := scanEach(ctx, db, pgTablesQuery, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	columns := make(map[string][]Column)
	err = scanEach(ctx, db, pgColumnsQuery, func(rows *sql.Rows) error {
		var table string
		var col Column
		if err := rows.Scan(&table, &col.Name, &col.Type, &col.Nullable, &col.Comment); err != nil {
			return err
		}
		columns[table] = append(columns[table], col)
		return nil
	})
	if err != nil {
		return nil, err
	}

	pks := make(map[string][]string)
	err = scanEach(ctx, db, pgPrimaryKeysQuery, func(rows *sql.Rows) error {
		var table, col string
		if err := rows.Scan(&table, &col); err != nil {
			return err
		}
		pks[table] = append(pks[table], col)
		return nil
	})
	if err != nil {
		return nil, err
	}

	fks := make(map[string][]ForeignKey)
	err = scanEach(ctx, db, pgForeignKeysQuery, func(rows *sql.Rows) error {
		var table string
		var fk ForeignKey
		if err := rows.Scan(&table, &fk.Column, &fk.ForeignTable, &fk.ForeignColumn); err != nil {
			return err
		}
		fks[table] = append(fks[table], fk)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Estimates are optional; permissions on pg_class vary.
	estimates := make(map[string]int64)
	_ = scanEach(ctx, db, pgRowEstimatesQuery, func(rows *sql.Rows) error {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return err
		}
		estimates[name] = n
		return nil
	})

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		table := Table{
			Name:        name,
			Columns:     columns[name],
			ForeignKeys: fks[name],
			RowEstimate: estimates[name],
		}
		markPrimaryKeys(&table, pks[name])
		tables = append(tables, table)
	}
	return tables, nil
}

func scanEach(ctx context.Context, db *sql.DB, query string, fn func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
