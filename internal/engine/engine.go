// Package engine implements the Orchestrator: the top-level algorithm
// of §4.9, driving every other component in the documented order and
// committing between the swap and the optional drop.
package engine

import (
	"context"
	"database/sql"

	"tablepart/internal/bounds"
	"tablepart/internal/catalog"
	"tablepart/internal/config"
	"tablepart/internal/core"
	"tablepart/internal/ddl"
	"tablepart/internal/ledger"
	"tablepart/internal/log"
	"tablepart/internal/planner"
	"tablepart/internal/schema"
	"tablepart/internal/sink"
)

// Engine wires the pipeline stages together and runs the orchestration
// algorithm against one database connection.
type Engine struct {
	resolver   *config.Resolver
	enumerator *schema.Enumerator
	inspector  *catalog.Inspector
	prober     *bounds.Prober
	planner    *planner.Planner
	emitter    *ddl.Emitter
	sink       sink.Sink
	ledger     *ledger.Ledger
}

// New builds an Engine over db, a resolved configuration, and the sink
// chosen for this run (live or script mode).
func New(db *sql.DB, cfg *core.Config, sk sink.Sink) *Engine {
	resolver := config.NewResolver(cfg)
	return &Engine{
		resolver:   resolver,
		enumerator: schema.NewEnumerator(db, cfg.ExcludedSchemata),
		inspector:  catalog.NewInspector(db),
		prober:     bounds.NewProber(db),
		planner:    planner.New(),
		emitter:    ddl.New(),
		sink:       sk,
		ledger:     ledger.New(sk),
	}
}

// Run drives every user schema through the full transformation.
func (e *Engine) Run(ctx context.Context) error {
	for schemaName, err := range e.enumerator.Schemas(ctx) {
		if err != nil {
			return err
		}
		log.WithField("schema", schemaName).Infof("processing schema")
		if err := e.processSchema(ctx, schemaName); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) processSchema(ctx context.Context, schemaName string) error {
	if err := e.ledger.InitLedger(ctx, schemaName); err != nil {
		return err
	}

	for _, directive := range e.resolver.TargetsFor(schemaName) {
		log.WithField("schema", schemaName).WithField("table", directive.Table).Infof("partitioning table")
		if err := e.processDirective(ctx, schemaName, directive); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) processDirective(ctx context.Context, schemaName string, directive core.Directive) error {
	described, err := e.inspector.Describe(ctx, schemaName, []string{directive.Table})
	if err != nil {
		return err
	}
	columns, ok := described[directive.Table]
	if !ok {
		return core.NewError(core.ErrCatalogError, "table %q not found in schema %q", directive.Table, schemaName)
	}
	info := core.TableInfo{Columns: columns, Directive: directive}

	specs, err := e.planSpecs(ctx, schemaName, info, directive)
	if err != nil {
		return err
	}

	targetSchema := directive.TargetSchemaOr(schemaName)

	if err := e.sink.Execute(ctx, e.emitter.BuildPartitionedTableDDL(targetSchema, info)); err != nil {
		return err
	}

	if err := e.emitChild(ctx, targetSchema, directive, core.PartitionSpec{Kind: core.KindDefault, Suffix: "default"}); err != nil {
		return err
	}
	for _, spec := range specs {
		if err := e.emitChild(ctx, targetSchema, directive, spec); err != nil {
			return err
		}
	}

	parallelName := ddl.ParallelTableName(directive.Table)
	for _, op := range e.emitter.BuildSwapDDL(schemaName, directive.Table, targetSchema, parallelName) {
		if err := e.sink.Execute(ctx, op); err != nil {
			return err
		}
	}

	renamedSource := ddl.RenamedSourceName(directive.Table)
	copyOp := e.emitter.BuildCopyDDL(schemaName, renamedSource, targetSchema, directive.Table)
	if err := e.sink.Execute(ctx, copyOp); err != nil {
		return err
	}

	if directive.DropTable {
		for _, op := range e.emitter.BuildDropDDL(schemaName, renamedSource) {
			if err := e.sink.Execute(ctx, op); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Engine) planSpecs(ctx context.Context, schemaName string, info core.TableInfo, directive core.Directive) ([]core.PartitionSpec, error) {
	switch directive.PartitionType {
	case core.PartitionRange:
		lo, hi, err := e.prober.Bounds(ctx, schemaName, info)
		if err != nil {
			return nil, err
		}
		lo = planner.Floor(lo, directive.Range.IntervalType)
		hi = planner.Ceil(hi, directive.Range.IntervalType)

		seq, err := e.planner.PlanRange(lo, hi, directive.Range.IntervalType, directive.Range.Interval)
		if err != nil {
			return nil, err
		}
		var specs []core.PartitionSpec
		for spec := range seq {
			specs = append(specs, spec)
		}
		return specs, nil

	case core.PartitionList:
		return e.planner.PlanList(directive.List.Values), nil

	default:
		return nil, core.NewError(core.ErrInvalidConfig, "directive %q has unsupported partition_type %q", directive.Table, directive.PartitionType)
	}
}

func (e *Engine) emitChild(ctx context.Context, schemaName string, directive core.Directive, spec core.PartitionSpec) error {
	for _, op := range e.emitter.BuildChildDDL(schemaName, directive.Table, spec) {
		if err := e.sink.Execute(ctx, op); err != nil {
			return err
		}
	}

	record := core.LedgerRecord{
		Schema:          schemaName,
		ChildTable:      ddl.ChildTableName(directive.Table, spec.Suffix),
		ParentTable:     directive.Table,
		PartitionType:   spec.Kind,
		PartitionColumn: directive.PartitionKey,
		Parameters:      core.ParametersFor(spec),
	}
	return e.ledger.RecordPartition(ctx, record)
}
