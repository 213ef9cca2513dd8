package ledger_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepart/internal/core"
	"tablepart/internal/ledger"
)

type recordingSink struct {
	ops []core.Operation
}

func (r *recordingSink) Execute(_ context.Context, op core.Operation) error {
	r.ops = append(r.ops, op)
	return nil
}

func (r *recordingSink) Close() error { return nil }

func TestInitLedgerDropsThenCreates(t *testing.T) {
	rs := &recordingSink{}
	l := ledger.New(rs)

	require.NoError(t, l.InitLedger(context.Background(), "billing"))

	require.Len(t, rs.ops, 2)
	assert.Contains(t, rs.ops[0].SQL, `DROP TABLE IF EXISTS "billing"."partitioned_tables"`)
	assert.True(t, rs.ops[0].Override)
	assert.Contains(t, rs.ops[1].SQL, `CREATE TABLE "billing"."partitioned_tables"`)
	assert.Contains(t, rs.ops[1].SQL, "PRIMARY KEY (schema_name, table_name)")
	assert.True(t, rs.ops[1].Override)
}

func TestRecordPartitionUsesOriginalTableNameAsParent(t *testing.T) {
	rs := &recordingSink{}
	l := ledger.New(rs)

	rec := core.LedgerRecord{
		Schema:          "billing",
		ChildTable:      "usage_events_2020_01",
		ParentTable:     "usage_events",
		PartitionType:   core.KindRange,
		PartitionColumn: "usage_start",
		Parameters:      core.PartitionParameters{Default: false},
	}
	require.NoError(t, l.RecordPartition(context.Background(), rec))

	require.Len(t, rs.ops, 1)
	op := rs.ops[0]
	assert.True(t, op.Override)
	require.Len(t, op.Args, 6)
	assert.Equal(t, "usage_events", op.Args[2])

	var params core.PartitionParameters
	require.NoError(t, json.Unmarshal([]byte(op.Args[5].(string)), &params))
	assert.False(t, params.Default)
}
