package physical

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/graph"
)

// LimitExec is global, so it requires an input with a single partition.
type LimitExec struct {
	input ExecutionPlan
	limit int64
}

func NewLimitExec(input ExecutionPlan, limit int64) (*LimitExec, error) {
	if count := input.OutputPartitioning().Count; count != 1 {
		return nil, errors.Wrapf(ErrPlanningInvariantViolation, "limit requires a single input partition, got %d", count)
	}
	return &LimitExec{
		input: input,
		limit: limit,
	}, nil
}

func (e *LimitExec) Schema() *arrow.Schema {
	return e.input.Schema()
}

func (e *LimitExec) OutputPartitioning() Partitioning {
	return UnknownPartitioning(1)
}

func (e *LimitExec) OutputOrdering() []SortExpr {
	return e.input.OutputOrdering()
}

func (e *LimitExec) Children() []ExecutionPlan {
	return []ExecutionPlan{e.input}
}

func (e *LimitExec) WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error) {
	if len(children) != 1 {
		return nil, errors.Wrapf(ErrPlanningInvariantViolation, "limit takes exactly one child, got %d", len(children))
	}
	return NewLimitExec(children[0], e.limit)
}

func (e *LimitExec) Execute(ctx context.Context, partition int) (execution.RecordStream, error) {
	if err := checkSinglePartition("limit", partition); err != nil {
		return nil, err
	}
	stream, err := e.input.Execute(ctx, partition)
	if err != nil {
		return nil, err
	}
	return execution.NewLimitStream(stream, e.limit), nil
}

func (e *LimitExec) String() string {
	return fmt.Sprintf("LimitExec: limit=%d", e.limit)
}

func (e *LimitExec) Visualize() *graph.Node {
	n := graph.NewNode("LimitExec")
	n.AddField("limit", fmt.Sprint(e.limit))
	n.AddChild("input", e.input.Visualize())
	return n
}
