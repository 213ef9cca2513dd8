// Package ledger implements the Partition Ledger: the per-schema
// tracking table recreated at the start of each schema's processing
// and populated as child partitions are created.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"tablepart/internal/core"
	"tablepart/internal/ddl"
	"tablepart/internal/sink"
)

const tableName = "partitioned_tables"

// Ledger writes tracking rows through a Sink. Init and record writes
// are always marked Override so the tracking table stays accurate even
// during a script-mode run, matching the original's read-path override
// treatment of bookkeeping statements (§8 scenario 5).
type Ledger struct {
	sink sink.Sink
}

// New builds a Ledger writing through s.
func New(s sink.Sink) *Ledger {
	return &Ledger{sink: s}
}

func qualified(schema string) string {
	return ddl.Quote(schema) + "." + ddl.Quote(tableName)
}

// InitLedger drops and recreates the tracking table for schema.
func (l *Ledger) InitLedger(ctx context.Context, schema string) error {
	drop := core.Operation{
		SQL:      fmt.Sprintf("DROP TABLE IF EXISTS %s;", qualified(schema)),
		Override: true,
		Risk:     core.RiskWarning,
	}
	if err := l.sink.Execute(ctx, drop); err != nil {
		return err
	}

	create := core.Operation{
		SQL: fmt.Sprintf(`CREATE TABLE %s (
  schema_name text NOT NULL,
  table_name text NOT NULL,
  partition_of_table_name text NOT NULL,
  partition_type text NOT NULL,
  partition_col text NOT NULL,
  partition_parameters jsonb NOT NULL,
  PRIMARY KEY (schema_name, table_name)
);`, qualified(schema)),
		Override: true,
		Risk:     core.RiskInfo,
	}
	return l.sink.Execute(ctx, create)
}

// RecordPartition inserts one row for a created child partition.
// rec.ParentTable is deliberately the original source table name, not
// the p_<name> parallel table it was physically built from.
func (l *Ledger) RecordPartition(ctx context.Context, rec core.LedgerRecord) error {
	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return core.WrapError(core.ErrIOError, err, "marshalling partition parameters for %q", rec.ChildTable)
	}

	op := core.Operation{
		SQL: fmt.Sprintf(`INSERT INTO %s
  (schema_name, table_name, partition_of_table_name, partition_type, partition_col, partition_parameters)
  VALUES ($1, $2, $3, $4, $5, $6);`, qualified(rec.Schema)),
		Args: []any{
			rec.Schema,
			rec.ChildTable,
			rec.ParentTable,
			string(rec.PartitionType),
			rec.PartitionColumn,
			string(params),
		},
		Override: true,
		Risk:     core.RiskInfo,
	}
	return l.sink.Execute(ctx, op)
}
