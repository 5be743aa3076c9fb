package physical

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/graph"
	"github.com/cube2222/octodist/meta"
)

// TableProvider reads tables stored locally.
type TableProvider interface {
	// Scan returns the given columns of the table, all of them if projection is nil.
	Scan(ctx context.Context, table meta.TableName, schema datatypes.Schema, projection []int) (execution.RecordStream, error)
}

type TableScanExec struct {
	table       meta.TableName
	tableSchema datatypes.Schema
	projection  []int
	schema      *arrow.Schema
	provider    TableProvider
}

func NewTableScanExec(table meta.TableName, tableSchema datatypes.Schema, projection []int, schema *arrow.Schema, provider TableProvider) *TableScanExec {
	return &TableScanExec{
		table:       table,
		tableSchema: tableSchema,
		projection:  projection,
		schema:      schema,
		provider:    provider,
	}
}

func (e *TableScanExec) Schema() *arrow.Schema {
	return e.schema
}

func (e *TableScanExec) OutputPartitioning() Partitioning {
	return UnknownPartitioning(1)
}

func (e *TableScanExec) OutputOrdering() []SortExpr {
	return nil
}

func (e *TableScanExec) Children() []ExecutionPlan {
	return nil
}

func (e *TableScanExec) WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error) {
	if len(children) != 0 {
		return nil, errors.Wrapf(ErrPlanningInvariantViolation, "table scan takes no children, got %d", len(children))
	}
	return e, nil
}

func (e *TableScanExec) Execute(ctx context.Context, partition int) (execution.RecordStream, error) {
	if err := checkSinglePartition("table scan", partition); err != nil {
		return nil, err
	}
	stream, err := e.provider.Scan(ctx, e.table, e.tableSchema, e.projection)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't scan table %s", e.table)
	}
	return stream, nil
}

func (e *TableScanExec) String() string {
	return fmt.Sprintf("TableScanExec: table=%s", e.table)
}

func (e *TableScanExec) Visualize() *graph.Node {
	n := graph.NewNode("TableScanExec")
	n.AddField("table", e.table.String())
	if e.projection != nil {
		n.AddField("projection", fmt.Sprint(e.projection))
	}
	return n
}
