package engine_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"tablepart/internal/core"
	"tablepart/internal/engine"
	"tablepart/internal/sink"
)

type testPostgresContainer struct {
	container *postgres.PostgresContainer
	dsn       string
	db        *sql.DB
}

func setupPostgres(t *testing.T) *testPostgresContainer {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start postgres container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err, "failed to open direct DB connection")
	db.SetMaxOpenConns(1)
	require.NoError(t, db.PingContext(ctx), "failed to ping database")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return &testPostgresContainer{container: pgContainer, dsn: dsn, db: db}
}

// TestEngineMonthlyRangePartitioning exercises end-to-end scenario 1
// from §8: a source table with rows spanning three calendar months
// gets partitioned monthly, with the deliberate one-month overshoot.
func TestEngineMonthlyRangePartitioning(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupPostgres(t)
	ctx := context.Background()

	_, err := tc.db.ExecContext(ctx, `
		CREATE TABLE usage_events (
			id bigint NOT NULL,
			usage_start timestamptz NOT NULL
		);
		INSERT INTO usage_events (id, usage_start) VALUES
			(1, '2020-01-15T00:00:00Z'),
			(2, '2020-02-20T00:00:00Z'),
			(3, '2020-03-10T00:00:00Z');
	`)
	require.NoError(t, err)

	cfg := &core.Config{
		PartitionTargets: map[string][]core.Directive{
			"public": {
				{
					Table:         "usage_events",
					PartitionKey:  "usage_start",
					PartitionType: core.PartitionRange,
					Range:         &core.RangeSpec{IntervalType: core.IntervalMonth, Interval: 1},
				},
			},
		},
		ExcludedSchemata: map[string]bool{},
	}

	eng := engine.New(tc.db, cfg, sink.NewLiveSink(tc.db))
	require.NoError(t, eng.Run(ctx))

	var count int
	require.NoError(t, tc.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM usage_events`).Scan(&count))
	assert.Equal(t, 3, count, "every row must survive the transformation")

	var childCount int
	require.NoError(t, tc.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name LIKE 'usage_events_%'
	`).Scan(&childCount))
	assert.Equal(t, 5, childCount, "four monthly children (with one overshoot) plus the default child")

	var ledgerRows int
	require.NoError(t, tc.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM partitioned_tables`).Scan(&ledgerRows))
	assert.Equal(t, 5, ledgerRows, "one ledger row per created child")

	var renamedExists bool
	require.NoError(t, tc.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = '__usage_events')
	`).Scan(&renamedExists))
	assert.True(t, renamedExists, "drop_table defaults to false, so the renamed original persists")
}

// TestEngineDropTableRemovesRenamedOriginal covers end-to-end scenario
// 6: drop_table=true removes __<source> after a successful run.
func TestEngineDropTableRemovesRenamedOriginal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupPostgres(t)
	ctx := context.Background()

	_, err := tc.db.ExecContext(ctx, `
		CREATE TABLE region_codes (
			id bigint NOT NULL,
			region text NOT NULL
		);
		INSERT INTO region_codes (id, region) VALUES (1, 'us-east'), (2, 'eu-central');
	`)
	require.NoError(t, err)

	cfg := &core.Config{
		PartitionTargets: map[string][]core.Directive{
			"public": {
				{
					Table:         "region_codes",
					PartitionKey:  "region",
					PartitionType: core.PartitionList,
					List:          &core.ListSpec{Values: [][]string{{"us-east", "us-west"}, {"eu-central"}}},
					DropTable:     true,
				},
			},
		},
		ExcludedSchemata: map[string]bool{},
	}

	eng := engine.New(tc.db, cfg, sink.NewLiveSink(tc.db))
	require.NoError(t, eng.Run(ctx))

	var renamedExists bool
	require.NoError(t, tc.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = '__region_codes')
	`).Scan(&renamedExists))
	assert.False(t, renamedExists, "drop_table=true must remove the renamed original")

	var count int
	require.NoError(t, tc.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM region_codes`).Scan(&count))
	assert.Equal(t, 2, count)
}
