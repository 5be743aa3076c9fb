package physical

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/graph"
	"github.com/cube2222/octodist/logical"
)

type FilterExec struct {
	input     ExecutionPlan
	predicate logical.Expression
	compiled  execution.Expression
}

func NewFilterExec(input ExecutionPlan, predicate logical.Expression) (*FilterExec, error) {
	compiled, err := CompileExpression(predicate)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't compile filter predicate")
	}
	return &FilterExec{
		input:     input,
		predicate: predicate,
		compiled:  compiled,
	}, nil
}

func (e *FilterExec) Schema() *arrow.Schema {
	return e.input.Schema()
}

func (e *FilterExec) OutputPartitioning() Partitioning {
	return e.input.OutputPartitioning()
}

func (e *FilterExec) OutputOrdering() []SortExpr {
	return e.input.OutputOrdering()
}

func (e *FilterExec) Children() []ExecutionPlan {
	return []ExecutionPlan{e.input}
}

func (e *FilterExec) WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error) {
	if len(children) != 1 {
		return nil, errors.Wrapf(ErrPlanningInvariantViolation, "filter takes exactly one child, got %d", len(children))
	}
	return &FilterExec{
		input:     children[0],
		predicate: e.predicate,
		compiled:  e.compiled,
	}, nil
}

func (e *FilterExec) Execute(ctx context.Context, partition int) (execution.RecordStream, error) {
	stream, err := e.input.Execute(ctx, partition)
	if err != nil {
		return nil, err
	}
	return execution.NewFilterStream(stream, e.compiled), nil
}

func (e *FilterExec) String() string {
	return "FilterExec: " + e.predicate.String()
}

func (e *FilterExec) Visualize() *graph.Node {
	n := graph.NewNode("FilterExec")
	n.AddField("predicate", e.predicate.String())
	n.AddChild("input", e.input.Visualize())
	return n
}
