// Package core holds the domain types shared by every stage of the
// partitioning pipeline (config, catalog, bounds, planner, ddl, sink,
// ledger, engine) and the kinded Error type used to report failures.
package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartitionType selects the partitioning strategy a Directive requests.
type PartitionType string

const (
	PartitionRange PartitionType = "range"
	PartitionList  PartitionType = "list"
)

// Interval names accepted for temporal range directives. Numeric range
// directives instead name a database numeric type and are validated by
// the planner, not here.
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// RangeSpec is the nested block of a range directive.
type RangeSpec struct {
	IntervalType string
	Interval     int
}

// ListSpec is the nested block of a list directive: an ordered list of
// value groups, each group becoming one child partition's membership.
type ListSpec struct {
	Values [][]string
}

// Directive describes how to partition one source table.
type Directive struct {
	Table         string
	TargetSchema  string
	PartitionKey  string
	PartitionType PartitionType
	Range         *RangeSpec
	List          *ListSpec
	DropTable     bool
}

// Validate enforces the Config Resolver's structural rules, returning
// an *Error of kind ErrInvalidConfig on the first violation found.
func (d Directive) Validate() error {
	if d.Table == "" {
		return NewError(ErrInvalidConfig, "directive missing table name")
	}
	if d.PartitionKey == "" {
		return NewError(ErrInvalidConfig, "directive %q missing partition_key", d.Table)
	}
	switch d.PartitionType {
	case PartitionRange:
		if d.Range == nil {
			return NewError(ErrInvalidConfig, "directive %q declares partition_type=range but has no range block", d.Table)
		}
	case PartitionList:
		if d.List == nil {
			return NewError(ErrInvalidConfig, "directive %q declares partition_type=list but has no list block", d.Table)
		}
	default:
		return NewError(ErrInvalidConfig, "directive %q has unsupported partition_type %q", d.Table, d.PartitionType)
	}
	return nil
}

// TargetSchemaOr returns d.TargetSchema, defaulting to processingSchema
// when unset, per §3 "defaults to the processing schema".
func (d Directive) TargetSchemaOr(processingSchema string) string {
	if d.TargetSchema != "" {
		return d.TargetSchema
	}
	return processingSchema
}

// Config is the fully loaded, read-only configuration value the
// orchestrator and config.Resolver operate on.
type Config struct {
	PartitionTargets map[string][]Directive
	ExcludedSchemata map[string]bool
}

// ColumnDescriptor describes one column of a source table, in catalog
// attribute order.
type ColumnDescriptor struct {
	Schema   string
	Table    string
	Name     string
	DataType string
	NotNull  bool
	Default  *string
}

// IsTemporal reports whether the column's catalog data type is a date
// or timestamp family type.
func (c ColumnDescriptor) IsTemporal() bool {
	switch c.DataType {
	case "date", "timestamp", "timestamp without time zone", "timestamptz", "timestamp with time zone":
		return true
	default:
		return false
	}
}

// TableInfo pairs a table's ordered columns with the directive that
// names it.
type TableInfo struct {
	Columns   []ColumnDescriptor
	Directive Directive
}

// Column looks up a column by name, returning ok=false if absent.
func (t TableInfo) Column(name string) (ColumnDescriptor, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// PartitionKindTag tags the three shapes a PartitionSpec can take.
type PartitionKindTag string

const (
	KindRange   PartitionKindTag = "range"
	KindList    PartitionKindTag = "list"
	KindDefault PartitionKindTag = "default"
)

// Bound is a partition-key value that is either temporal or numeric;
// exactly one field is set. Keeping both forms behind one type lets
// the planner and DDL emitter stay kind-agnostic about the partition
// column's underlying catalog type.
type Bound struct {
	Time    *time.Time
	Numeric *decimal.Decimal
}

// TimeBound wraps a time.Time bound, normalized to UTC.
func TimeBound(t time.Time) Bound {
	u := t.UTC()
	return Bound{Time: &u}
}

// NumericBound wraps a decimal bound.
func NumericBound(d decimal.Decimal) Bound {
	return Bound{Numeric: &d}
}

// SQLLiteral renders the bound the way it should appear inside a
// generated FOR VALUES clause.
func (b Bound) SQLLiteral() string {
	if b.Time != nil {
		return "'" + b.Time.Format("2006-01-02T15:04:05Z07:00") + "'"
	}
	if b.Numeric != nil {
		return b.Numeric.String()
	}
	return "NULL"
}

// Suffix renders the bound the way it should appear in a generated
// child partition's table name fragment.
func (b Bound) Suffix() string {
	if b.Time != nil {
		return b.Time.Format("2006_01")
	}
	if b.Numeric != nil {
		return b.Numeric.String()
	}
	return "unknown"
}

// PartitionSpec is the tagged variant described in §3: Range{low,high},
// List{members}, or Default.
type PartitionSpec struct {
	Kind    PartitionKindTag
	Low     Bound
	High    Bound
	Members []string
	Suffix  string
}

// PartitionParameters is the structured value recorded into the
// ledger's partition_parameters column; its populated fields depend on
// Kind, matching the three shapes named in §3.
type PartitionParameters struct {
	Default bool     `json:"default"`
	From    *string  `json:"from,omitempty"`
	To      *string  `json:"to,omitempty"`
	In      []string `json:"in,omitempty"`
}

// ParametersFor derives the ledger parameter blob for a PartitionSpec.
func ParametersFor(spec PartitionSpec) PartitionParameters {
	switch spec.Kind {
	case KindDefault:
		return PartitionParameters{Default: true}
	case KindRange:
		from, to := spec.Low.SQLLiteral(), spec.High.SQLLiteral()
		return PartitionParameters{Default: false, From: &from, To: &to}
	case KindList:
		return PartitionParameters{Default: false, In: spec.Members}
	default:
		return PartitionParameters{}
	}
}

// LedgerRecord is one row of the partitioned_tables tracking table.
type LedgerRecord struct {
	Schema              string
	ChildTable          string
	ParentTable         string
	PartitionType       PartitionKindTag
	PartitionColumn     string
	Parameters          PartitionParameters
}
