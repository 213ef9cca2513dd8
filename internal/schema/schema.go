// Package schema implements the Schema Enumerator: producing the list
// of user schemas to process, in lexical order, from the database's
// user-table statistics catalog rather than the full namespace catalog.
package schema

import (
	"context"
	"database/sql"
	"iter"

	"tablepart/internal/core"
)

// Enumerator yields user schema names, skipping anything excluded.
type Enumerator struct {
	db       *sql.DB
	excluded map[string]bool
}

// NewEnumerator builds an Enumerator over db, skipping any schema name
// present in excluded.
func NewEnumerator(db *sql.DB, excluded map[string]bool) *Enumerator {
	return &Enumerator{db: db, excluded: excluded}
}

// Schemas returns a lazy, finite, non-restartable sequence of
// (schemaName, error) pairs in lexical order. A non-nil error always
// terminates the sequence after that yield.
func (e *Enumerator) Schemas(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		rows, err := e.db.QueryContext(ctx, `
			SELECT DISTINCT schemaname
			FROM pg_stat_user_tables
			ORDER BY schemaname`)
		if err != nil {
			yield("", core.WrapError(core.ErrCatalogError, err, "enumerating schemas"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				yield("", core.WrapError(core.ErrCatalogError, err, "scanning schema row"))
				return
			}
			if e.excluded[name] {
				continue
			}
			if !yield(name, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield("", core.WrapError(core.ErrCatalogError, err, "iterating schema rows"))
		}
	}
}
