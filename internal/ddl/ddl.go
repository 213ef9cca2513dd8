// Package ddl implements the DDL Emitter: turning table shape and
// partition specs into the CREATE/RENAME/INSERT/DROP statements the
// orchestrator feeds to the Execution Sink, each tagged with a risk
// level for observational logging.
package ddl

import (
	"fmt"
	"strings"

	"tablepart/internal/core"
)

// Quote double-quotes a PostgreSQL identifier, escaping embedded quotes.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func qualified(schema, table string) string {
	return Quote(schema) + "." + Quote(table)
}

// ParallelTableName is the name the synthesized partitioned table uses
// during build, before the swap renames it over the source.
func ParallelTableName(table string) string {
	return "p_" + table
}

// RenamedSourceName is the name the source table is renamed to at swap
// time.
func RenamedSourceName(table string) string {
	return "__" + table
}

// ChildTableName builds a child partition's table name from its suffix.
func ChildTableName(table, suffix string) string {
	return table + "_" + suffix
}

// Emitter builds SQL text for one dialect (PostgreSQL-family
// declarative partitioning); it carries no state.
type Emitter struct{}

// New returns an Emitter.
func New() *Emitter { return &Emitter{} }

// BuildPartitionedTableDDL synthesises the parallel partitioned table
// from a table's column shape, preserving not-null and default
// verbatim. Indexes, constraints, and triggers are not copied (§9).
func (e *Emitter) BuildPartitionedTableDDL(schema string, info core.TableInfo) core.Operation {
	name := qualified(schema, ParallelTableName(info.Directive.Table))

	lines := make([]string, 0, len(info.Columns))
	for _, col := range info.Columns {
		line := Quote(col.Name) + " " + col.DataType
		if col.NotNull {
			line += " NOT NULL"
		}
		if col.Default != nil {
			line += " DEFAULT " + *col.Default
		}
		lines = append(lines, line)
	}

	kind := partitionKindClause(info.Directive.PartitionType)
	sqlText := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n) PARTITION BY %s (%s);",
		name, strings.Join(lines, ",\n  "), kind, Quote(info.Directive.PartitionKey))

	return core.Operation{SQL: sqlText, Risk: core.RiskInfo}
}

func partitionKindClause(pt core.PartitionType) string {
	if pt == core.PartitionList {
		return "LIST"
	}
	return "RANGE"
}

// BuildChildDDL generates the CREATE TABLE ... PARTITION OF statement
// for one child, paired with a DROP TABLE IF EXISTS against the same
// name so reruns are idempotent up to data-copy side effects.
func (e *Emitter) BuildChildDDL(schema, parentTable string, spec core.PartitionSpec) []core.Operation {
	childName := ChildTableName(parentTable, spec.Suffix)
	qualifiedChild := qualified(schema, childName)
	qualifiedParent := qualified(schema, ParallelTableName(parentTable))

	drop := core.Operation{
		SQL:  fmt.Sprintf("DROP TABLE IF EXISTS %s;", qualifiedChild),
		Risk: core.RiskWarning,
	}

	var create string
	switch spec.Kind {
	case core.KindDefault:
		create = fmt.Sprintf("CREATE TABLE %s PARTITION OF %s DEFAULT;", qualifiedChild, qualifiedParent)
	case core.KindRange:
		create = fmt.Sprintf("CREATE TABLE %s PARTITION OF %s FOR VALUES FROM (%s) TO (%s);",
			qualifiedChild, qualifiedParent, spec.Low.SQLLiteral(), spec.High.SQLLiteral())
	case core.KindList:
		quoted := make([]string, len(spec.Members))
		for i, m := range spec.Members {
			quoted[i] = "'" + strings.ReplaceAll(m, "'", "''") + "'"
		}
		create = fmt.Sprintf("CREATE TABLE %s PARTITION OF %s FOR VALUES IN (%s);",
			qualifiedChild, qualifiedParent, strings.Join(quoted, ", "))
	}

	return []core.Operation{drop, {SQL: create, Risk: core.RiskInfo}}
}

// BuildSwapDDL emits the atomic swap block as five discrete statements
// forming one transaction: begin, lock the source, rename it aside,
// rename the parallel table into its place, commit. Each statement is returned
// separately so the sink can log/format them individually; the caller
// is responsible for running them on the same connection in order.
func (e *Emitter) BuildSwapDDL(sourceSchema, sourceTable, targetSchema, parallelTable string) []core.Operation {
	source := qualified(sourceSchema, sourceTable)
	renamedSource := RenamedSourceName(sourceTable)
	parallel := qualified(targetSchema, parallelTable)

	return []core.Operation{
		{SQL: "BEGIN;", Risk: core.RiskWarning},
		{SQL: fmt.Sprintf("LOCK TABLE %s;", source), Risk: core.RiskWarning, RequiresLock: true},
		{SQL: fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", source, Quote(renamedSource)), Risk: core.RiskWarning},
		{SQL: fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", parallel, Quote(sourceTable)), Risk: core.RiskWarning},
		{SQL: "COMMIT;", Risk: core.RiskInfo},
	}
}

// BuildCopyDDL emits the data copy from the renamed original (which
// stays in fromSchema — RENAME never moves a table between schemas)
// into the now-partitioned table of the original name in toSchema.
func (e *Emitter) BuildCopyDDL(fromSchema, from, toSchema, to string) core.Operation {
	return core.Operation{
		SQL:  fmt.Sprintf("INSERT INTO %s SELECT * FROM %s;", qualified(toSchema, to), qualified(fromSchema, from)),
		Risk: core.RiskInfo,
	}
}

// BuildDropDDL truncates then drops the renamed original, for
// directives with drop_table set.
func (e *Emitter) BuildDropDDL(schema, table string) []core.Operation {
	q := qualified(schema, table)
	return []core.Operation{
		{SQL: fmt.Sprintf("TRUNCATE %s;", q), Risk: core.RiskCritical},
		{SQL: fmt.Sprintf("DROP TABLE %s;", q), Risk: core.RiskCritical},
	}
}
