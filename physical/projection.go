package physical

import (
	"context"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/graph"
	"github.com/cube2222/octodist/logical"
)

type ProjectionExec struct {
	input       ExecutionPlan
	schema      *arrow.Schema
	expressions []logical.Expression
	compiled    []execution.Expression
}

func NewProjectionExec(input ExecutionPlan, schema *arrow.Schema, expressions []logical.Expression) (*ProjectionExec, error) {
	if schema.NumFields() != len(expressions) {
		return nil, errors.Wrapf(ErrPlanningInvariantViolation, "projection schema has %d fields, but there are %d expressions", schema.NumFields(), len(expressions))
	}
	compiled := make([]execution.Expression, len(expressions))
	for i := range expressions {
		var err error
		if compiled[i], err = CompileExpression(expressions[i]); err != nil {
			return nil, errors.Wrapf(err, "couldn't compile projection expression with index %d", i)
		}
	}
	return &ProjectionExec{
		input:       input,
		schema:      schema,
		expressions: expressions,
		compiled:    compiled,
	}, nil
}

func (e *ProjectionExec) Schema() *arrow.Schema {
	return e.schema
}

func (e *ProjectionExec) OutputPartitioning() Partitioning {
	return e.input.OutputPartitioning()
}

func (e *ProjectionExec) OutputOrdering() []SortExpr {
	return nil
}

func (e *ProjectionExec) Children() []ExecutionPlan {
	return []ExecutionPlan{e.input}
}

func (e *ProjectionExec) WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error) {
	if len(children) != 1 {
		return nil, errors.Wrapf(ErrPlanningInvariantViolation, "projection takes exactly one child, got %d", len(children))
	}
	return &ProjectionExec{
		input:       children[0],
		schema:      e.schema,
		expressions: e.expressions,
		compiled:    e.compiled,
	}, nil
}

func (e *ProjectionExec) Execute(ctx context.Context, partition int) (execution.RecordStream, error) {
	stream, err := e.input.Execute(ctx, partition)
	if err != nil {
		return nil, err
	}
	return execution.NewProjectionStream(stream, e.schema, e.compiled), nil
}

func (e *ProjectionExec) String() string {
	return "ProjectionExec: " + e.expressionList()
}

func (e *ProjectionExec) expressionList() string {
	exprs := make([]string, len(e.expressions))
	for i := range e.expressions {
		exprs[i] = e.expressions[i].String() + " AS " + e.schema.Field(i).Name
	}
	return strings.Join(exprs, ", ")
}

func (e *ProjectionExec) Visualize() *graph.Node {
	n := graph.NewNode("ProjectionExec")
	n.AddField("expressions", e.expressionList())
	n.AddChild("input", e.input.Visualize())
	return n
}
