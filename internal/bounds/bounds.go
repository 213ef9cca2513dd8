// Package bounds implements the Bounds Prober: finding the minimum and
// maximum partition-key values actually present in a source table, and
// substituting sensible fallbacks for empty temporal tables.
package bounds

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tablepart/internal/core"
)

// Prober probes partition-key bounds against a live connection.
type Prober struct {
	db  *sql.DB
	now func() time.Time
}

// NewProber builds a Prober over db, using time.Now for the empty-table
// fallback window unless overridden (tests substitute a fixed clock).
func NewProber(db *sql.DB) *Prober {
	return &Prober{db: db, now: time.Now}
}

// WithClock overrides the clock used for the empty-table fallback.
func (p *Prober) WithClock(now func() time.Time) *Prober {
	p.now = now
	return p
}

// Bounds returns (min, max) for info's partition key. If the table is
// empty and the column is temporal, it substitutes the six-months-
// either-side-of-today fallback. Empty non-temporal columns fail with
// ErrEmptyNonTemporal.
func (p *Prober) Bounds(ctx context.Context, schema string, info core.TableInfo) (core.Bound, core.Bound, error) {
	col, ok := info.Column(info.Directive.PartitionKey)
	if !ok {
		return core.Bound{}, core.Bound{}, core.NewError(core.ErrCatalogError,
			"partition key %q not found on table %q", info.Directive.PartitionKey, info.Directive.Table)
	}

	qualified := fmt.Sprintf("%q.%q", schema, info.Directive.Table)
	column := fmt.Sprintf("%q", col.Name)

	if col.IsTemporal() {
		return p.temporalBounds(ctx, qualified, column)
	}
	return p.numericBounds(ctx, qualified, column)
}

func (p *Prober) temporalBounds(ctx context.Context, qualified, column string) (core.Bound, core.Bound, error) {
	row := p.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT MIN(%s)::timestamptz, MAX(%s)::timestamptz FROM %s`, column, column, qualified))

	var lo, hi sql.NullTime
	if err := row.Scan(&lo, &hi); err != nil {
		return core.Bound{}, core.Bound{}, core.WrapError(core.ErrCatalogError, err, "probing bounds on %s", qualified)
	}

	if !lo.Valid || !hi.Valid {
		fallbackLo, fallbackHi := p.fallbackWindow()
		return fallbackLo, fallbackHi, nil
	}
	return core.TimeBound(lo.Time), core.TimeBound(hi.Time), nil
}

// fallbackWindow computes the empty-temporal-table default: first day
// of the month six months before today through first day of the month
// six months after today, at UTC midnight.
func (p *Prober) fallbackWindow() (core.Bound, core.Bound) {
	today := p.now().UTC()
	lo := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -6, 0)
	hi := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 6, 0)
	return core.TimeBound(lo), core.TimeBound(hi)
}

func (p *Prober) numericBounds(ctx context.Context, qualified, column string) (core.Bound, core.Bound, error) {
	row := p.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT MIN(%s)::text, MAX(%s)::text FROM %s`, column, column, qualified))

	var lo, hi sql.NullString
	if err := row.Scan(&lo, &hi); err != nil {
		return core.Bound{}, core.Bound{}, core.WrapError(core.ErrCatalogError, err, "probing bounds on %s", qualified)
	}

	if !lo.Valid || !hi.Valid {
		return core.Bound{}, core.Bound{}, core.NewError(core.ErrEmptyNonTemporal,
			"table %s is empty and partition column %s is not temporal", qualified, column)
	}

	loDec, err := decimal.NewFromString(lo.String)
	if err != nil {
		return core.Bound{}, core.Bound{}, core.WrapError(core.ErrCatalogError, err, "parsing min bound %q", lo.String)
	}
	hiDec, err := decimal.NewFromString(hi.String)
	if err != nil {
		return core.Bound{}, core.Bound{}, core.WrapError(core.ErrCatalogError, err, "parsing max bound %q", hi.String)
	}
	return core.NumericBound(loDec), core.NumericBound(hiDec), nil
}

// FallbackWindow returns the window Bounds substitutes for an empty
// temporal table, computed from the Prober's clock without querying
// the database.
func (p *Prober) FallbackWindow() (core.Bound, core.Bound) {
	return p.fallbackWindow()
}
