package physical

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/graph"
)

// ExecutionPlan is a node of an executable plan.
type ExecutionPlan interface {
	graph.Visualizer

	Schema() *arrow.Schema
	OutputPartitioning() Partitioning
	// OutputOrdering is nil if the output is unordered.
	OutputOrdering() []SortExpr
	Children() []ExecutionPlan
	WithNewChildren(children []ExecutionPlan) (ExecutionPlan, error)
	// Execute returns a stream of the given output partition.
	Execute(ctx context.Context, partition int) (execution.RecordStream, error)
	String() string
}

// Partitioning describes how many independent output streams a plan has.
type Partitioning struct {
	Count int
}

func UnknownPartitioning(count int) Partitioning {
	return Partitioning{Count: count}
}

type SortExpr struct {
	Column     int
	Descending bool
}

// Collect executes all partitions of the plan, one after another, and reads them fully.
func Collect(ctx context.Context, plan ExecutionPlan) ([]arrow.Record, error) {
	var out []arrow.Record
	for partition := 0; partition < plan.OutputPartitioning().Count; partition++ {
		stream, err := plan.Execute(ctx, partition)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't execute partition %d", partition)
		}
		records, err := execution.ReadAll(ctx, stream)
		out = append(out, records...)
		if err != nil {
			return out, errors.Wrapf(err, "couldn't read partition %d", partition)
		}
	}
	return out, nil
}

// Explain renders the plan tree as text.
func Explain(plan ExecutionPlan) string {
	return graph.Format(plan.Visualize())
}

func checkSinglePartition(name string, partition int) error {
	if partition != 0 {
		return errors.Wrapf(ErrPlanningInvariantViolation, "%s has a single partition, got partition %d", name, partition)
	}
	return nil
}
