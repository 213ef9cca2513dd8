// Package catalog implements the Catalog Inspector: retrieving column
// shape for ordinary (non-view, non-partition) tables from
// information_schema, memoized process-wide per (schema, table).
package catalog

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"tablepart/internal/core"
)

// Inspector describes tables against a live connection, caching
// results for the lifetime of the process.
type Inspector struct {
	db *sql.DB

	mu    sync.Mutex
	cache map[key][]core.ColumnDescriptor
}

type key struct {
	schema string
	table  string
}

// NewInspector builds an Inspector over db.
func NewInspector(db *sql.DB) *Inspector {
	return &Inspector{db: db, cache: make(map[key][]core.ColumnDescriptor)}
}

// Describe returns a mapping from table name to ordered column
// descriptors for every name in tableNames that exists as an ordinary
// base table in schema. Names that don't resolve to such a table are
// silently absent from the result.
func (i *Inspector) Describe(ctx context.Context, schema string, tableNames []string) (map[string][]core.ColumnDescriptor, error) {
	result := make(map[string][]core.ColumnDescriptor, len(tableNames))

	var toFetch []string
	i.mu.Lock()
	for _, t := range tableNames {
		if cols, ok := i.cache[key{schema, t}]; ok {
			if cols != nil {
				result[t] = cols
			}
			continue
		}
		toFetch = append(toFetch, t)
	}
	i.mu.Unlock()

	if len(toFetch) == 0 {
		return result, nil
	}

	sort.Strings(toFetch)
	rows, err := i.db.QueryContext(ctx, `
		SELECT c.table_name, c.column_name, c.udt_name, c.is_nullable, c.column_default
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		JOIN pg_catalog.pg_namespace n ON n.nspname::text = c.table_schema::text
		JOIN pg_catalog.pg_class pc
		  ON pc.relnamespace = n.oid AND pc.relname::text = c.table_name::text
		WHERE c.table_schema = $1
		  AND t.table_type = 'BASE TABLE'
		  AND pc.relkind = 'r'
		  AND NOT pc.relispartition
		  AND c.table_name = ANY($2)
		ORDER BY c.table_name, c.ordinal_position`, schema, toFetch)
	if err != nil {
		return nil, core.WrapError(core.ErrCatalogError, err, "describing tables in schema %q", schema)
	}
	defer rows.Close()

	fetched := make(map[string][]core.ColumnDescriptor, len(toFetch))
	for rows.Next() {
		var (
			table, name, udtName, isNullable string
			def                              sql.NullString
		)
		if err := rows.Scan(&table, &name, &udtName, &isNullable, &def); err != nil {
			return nil, core.WrapError(core.ErrCatalogError, err, "scanning column row")
		}
		col := core.ColumnDescriptor{
			Schema:   schema,
			Table:    table,
			Name:     name,
			DataType: udtName,
			NotNull:  isNullable == "NO",
		}
		if def.Valid {
			v := def.String
			col.Default = &v
		}
		fetched[table] = append(fetched[table], col)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrCatalogError, err, "iterating column rows")
	}

	i.mu.Lock()
	for _, t := range toFetch {
		i.cache[key{schema, t}] = fetched[t]
	}
	i.mu.Unlock()

	for t, cols := range fetched {
		result[t] = cols
	}
	return result, nil
}
