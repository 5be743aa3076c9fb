package datanode

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cube2222/octodist/client"
	"github.com/cube2222/octodist/logical"
	"github.com/cube2222/octodist/physical"
)

// Instance executes plans against the tables stored locally.
type Instance struct {
	planner          *physical.Planner
	materializeLimit int64
}

// NewInstance creates a query engine reading from the given tables.
// Results of plans limited to at most materializeLimit rows are sent back whole, everything else is streamed.
func NewInstance(tables physical.TableProvider, materializeLimit int64) *Instance {
	return &Instance{
		planner: &physical.Planner{
			Tables: tables,
		},
		materializeLimit: materializeLimit,
	}
}

func (i *Instance) Execute(ctx context.Context, catalog, schema string, plan logical.Node) (*client.Output, error) {
	if _, ok := logical.UnwrapMergeScan(plan); ok {
		return nil, errors.New("datanodes can't execute merge scans")
	}
	execPlan, err := i.planner.CreatePhysicalPlan(ctx, plan)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create physical plan")
	}

	if i.shouldMaterialize(plan) {
		records, err := physical.Collect(ctx, execPlan)
		if err != nil {
			for _, rec := range records {
				rec.Release()
			}
			return nil, err
		}
		return client.NewRecordBatchesOutput(execPlan.Schema(), records), nil
	}

	stream, err := execPlan.Execute(ctx, 0)
	if err != nil {
		return nil, err
	}
	return client.NewStreamOutput(stream), nil
}

func (i *Instance) shouldMaterialize(plan logical.Node) bool {
	return plan.NodeType == logical.NodeTypeLimit && plan.Limit.Limit <= i.materializeLimit
}
