package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepart/internal/core"
)

func TestDirectiveValidateMissingPartitionKey(t *testing.T) {
	d := core.Directive{Table: "usage_events", PartitionType: core.PartitionRange, Range: &core.RangeSpec{}}
	err := d.Validate()
	require.Error(t, err)
	assert.True(t, core.Is(err, core.ErrInvalidConfig))
}

func TestDirectiveValidateUnsupportedPartitionType(t *testing.T) {
	d := core.Directive{Table: "t", PartitionKey: "id", PartitionType: "hash"}
	err := d.Validate()
	require.Error(t, err)
	assert.True(t, core.Is(err, core.ErrInvalidConfig))
}

func TestDirectiveValidateRangeMissingBlock(t *testing.T) {
	d := core.Directive{Table: "t", PartitionKey: "id", PartitionType: core.PartitionRange}
	err := d.Validate()
	require.Error(t, err)
}

func TestDirectiveValidateOK(t *testing.T) {
	d := core.Directive{
		Table:         "usage_events",
		PartitionKey:  "usage_start",
		PartitionType: core.PartitionRange,
		Range:         &core.RangeSpec{IntervalType: core.IntervalMonth, Interval: 1},
	}
	assert.NoError(t, d.Validate())
}

func TestTargetSchemaOrDefaultsToProcessingSchema(t *testing.T) {
	d := core.Directive{}
	assert.Equal(t, "billing", d.TargetSchemaOr("billing"))

	d.TargetSchema = "reporting"
	assert.Equal(t, "reporting", d.TargetSchemaOr("billing"))
}

func TestParametersForDefault(t *testing.T) {
	p := core.ParametersFor(core.PartitionSpec{Kind: core.KindDefault})
	assert.True(t, p.Default)
	assert.Nil(t, p.From)
	assert.Nil(t, p.In)
}

func TestParametersForRange(t *testing.T) {
	lo := core.TimeBound(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	hi := core.TimeBound(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC))
	p := core.ParametersFor(core.PartitionSpec{Kind: core.KindRange, Low: lo, High: hi})
	require.NotNil(t, p.From)
	require.NotNil(t, p.To)
	assert.False(t, p.Default)
}

func TestParametersForList(t *testing.T) {
	p := core.ParametersFor(core.PartitionSpec{Kind: core.KindList, Members: []string{"A", "B"}})
	assert.Equal(t, []string{"A", "B"}, p.In)
	assert.False(t, p.Default)
}

func TestBoundSuffixNumeric(t *testing.T) {
	b := core.NumericBound(decimal.NewFromInt(2018))
	assert.Equal(t, "2018", b.Suffix())
}

func TestColumnDescriptorIsTemporal(t *testing.T) {
	assert.True(t, core.ColumnDescriptor{DataType: "timestamptz"}.IsTemporal())
	assert.True(t, core.ColumnDescriptor{DataType: "date"}.IsTemporal())
	assert.False(t, core.ColumnDescriptor{DataType: "integer"}.IsTemporal())
}

func TestTableInfoColumnLookup(t *testing.T) {
	info := core.TableInfo{Columns: []core.ColumnDescriptor{{Name: "id"}, {Name: "usage_start"}}}
	col, ok := info.Column("usage_start")
	assert.True(t, ok)
	assert.Equal(t, "usage_start", col.Name)

	_, ok = info.Column("missing")
	assert.False(t, ok)
}
