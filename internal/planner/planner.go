// Package planner implements the Partition Planner: turning bounds and
// an interval/value specification into the ordered sequence of child
// partitions that must exist, plus the floor/ceil operations the
// orchestrator applies to range bounds before planning.
package planner

import (
	"iter"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"tablepart/internal/core"
)

// Planner produces partition sequences from bounds and directives. It
// carries no state; it exists as a type for symmetry with the other
// pipeline stages and to leave room for future configuration.
type Planner struct{}

// New returns a Planner.
func New() *Planner { return &Planner{} }

func isTemporalInterval(intervalType string) bool {
	return intervalType == core.IntervalMonth || intervalType == core.IntervalYear
}

// PlanRange produces a lazy, finite sequence of half-open Range
// PartitionSpecs whose union covers [low, high], permitted to overshoot
// by one interval past high. low and high must agree in kind (both
// temporal or both numeric) with intervalType.
func (p *Planner) PlanRange(low, high core.Bound, intervalType string, interval int) (iter.Seq[core.PartitionSpec], error) {
	if interval <= 0 {
		interval = 1
	}

	switch {
	case low.Time != nil && high.Time != nil:
		if !isTemporalInterval(intervalType) {
			return nil, core.NewError(core.ErrInvalidInterval, "interval_type %q is not valid for a temporal range (want %q or %q)", intervalType, core.IntervalMonth, core.IntervalYear)
		}
		months := interval
		if intervalType == core.IntervalYear {
			months = interval * 12
		}
		return temporalRange(*low.Time, *high.Time, intervalType, months), nil

	case low.Numeric != nil && high.Numeric != nil:
		if isTemporalInterval(intervalType) {
			return nil, core.NewError(core.ErrInvalidInterval, "interval_type %q is not valid for a numeric range", intervalType)
		}
		if intervalType == "" {
			return nil, core.NewError(core.ErrInvalidInterval, "numeric range directive missing interval_type")
		}
		return numericRange(*low.Numeric, *high.Numeric, interval), nil

	default:
		return nil, core.NewError(core.ErrInvalidInterval, "low and high bounds are of different kinds")
	}
}

func temporalRange(low, high time.Time, intervalType string, months int) iter.Seq[core.PartitionSpec] {
	return func(yield func(core.PartitionSpec) bool) {
		start := low
		for {
			end := start.AddDate(0, months, 0)
			spec := core.PartitionSpec{
				Kind:   core.KindRange,
				Low:    core.TimeBound(start),
				High:   core.TimeBound(end),
				Suffix: suffixFor(start, intervalType),
			}
			if !yield(spec) {
				return
			}
			if !start.Before(high) {
				return
			}
			start = end
		}
	}
}

func numericRange(low, high decimal.Decimal, interval int) iter.Seq[core.PartitionSpec] {
	step := decimal.NewFromInt(int64(interval))
	return func(yield func(core.PartitionSpec) bool) {
		start := low
		for {
			end := start.Add(step)
			spec := core.PartitionSpec{
				Kind:   core.KindRange,
				Low:    core.NumericBound(start),
				High:   core.NumericBound(end),
				Suffix: start.String(),
			}
			if !yield(spec) {
				return
			}
			if start.Cmp(high) >= 0 {
				return
			}
			start = end
		}
	}
}

func suffixFor(t time.Time, intervalType string) string {
	if intervalType == core.IntervalYear {
		return strconv.Itoa(t.Year())
	}
	return t.Format("2006_01")
}

// PlanList returns one PartitionSpec per value group, in the order
// given; the suffix is the group's index.
func (p *Planner) PlanList(valueLists [][]string) []core.PartitionSpec {
	specs := make([]core.PartitionSpec, 0, len(valueLists))
	for i, members := range valueLists {
		specs = append(specs, core.PartitionSpec{
			Kind:    core.KindList,
			Members: members,
			Suffix:  strconv.Itoa(i),
		})
	}
	return specs
}

// Floor rounds a bound down to the start of its interval unit: day=1
// for month, month=1 day=1 for year. Numeric bounds are returned
// unchanged — only Ceil adjusts numerics, per §4.9.
func Floor(b core.Bound, intervalType string) core.Bound {
	if b.Time == nil {
		return b
	}
	t := *b.Time
	switch intervalType {
	case core.IntervalMonth:
		return core.TimeBound(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
	case core.IntervalYear:
		return core.TimeBound(time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	default:
		return b
	}
}

// Ceil rounds a temporal bound's UTC date up to the start of the next
// interval unit (unless the date already falls exactly on one), and
// adds 1 to a numeric bound (decimal-aware), per §4.9.
func Ceil(b core.Bound, intervalType string) core.Bound {
	if b.Time != nil {
		t := time.Date(b.Time.Year(), b.Time.Month(), b.Time.Day(), 0, 0, 0, 0, time.UTC)
		switch intervalType {
		case core.IntervalMonth:
			floor := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
			if !t.Equal(floor) {
				floor = floor.AddDate(0, 1, 0)
			}
			return core.TimeBound(floor)
		case core.IntervalYear:
			floor := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
			if !t.Equal(floor) {
				floor = floor.AddDate(1, 0, 0)
			}
			return core.TimeBound(floor)
		default:
			return b
		}
	}
	if b.Numeric != nil {
		return core.NumericBound(b.Numeric.Add(decimal.NewFromInt(1)))
	}
	return b
}
