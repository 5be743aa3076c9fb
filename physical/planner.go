package physical

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/client"
	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/logical"
	"github.com/cube2222/octodist/meta"
	"github.com/cube2222/octodist/serialization"
)

// PeerResolver decides which peers own a table.
type PeerResolver interface {
	Peers(ctx context.Context, table meta.TableName) ([]meta.Peer, error)
}

// Planner lowers resolved logical plans into execution plans.
// Resolver and Clients are only required for plans with merge scans,
// Tables only for plans reading local tables.
type Planner struct {
	Resolver PeerResolver
	Clients  client.Pool
	Tables   TableProvider
}

func (p *Planner) CreatePhysicalPlan(ctx context.Context, node logical.Node) (ExecutionPlan, error) {
	switch node.NodeType {
	case logical.NodeTypeMergeScan:
		return p.createMergeScan(ctx, node)

	case logical.NodeTypeTableScan:
		if p.Tables == nil {
			return nil, errors.Errorf("table %s isn't available locally", node.TableScan.Table)
		}
		schema, err := arrowSchema(node)
		if err != nil {
			return nil, err
		}
		return NewTableScanExec(node.TableScan.Table, node.TableScan.TableSchema, node.TableScan.Projection, schema, p.Tables), nil

	case logical.NodeTypeFilter:
		input, err := p.CreatePhysicalPlan(ctx, node.Filter.Source)
		if err != nil {
			return nil, err
		}
		return NewFilterExec(input, node.Filter.Predicate)

	case logical.NodeTypeProjection:
		input, err := p.CreatePhysicalPlan(ctx, node.Projection.Source)
		if err != nil {
			return nil, err
		}
		schema, err := arrowSchema(node)
		if err != nil {
			return nil, err
		}
		return NewProjectionExec(input, schema, node.Projection.Expressions)

	case logical.NodeTypeLimit:
		input, err := p.CreatePhysicalPlan(ctx, node.Limit.Source)
		if err != nil {
			return nil, err
		}
		return NewLimitExec(input, node.Limit.Limit)
	}
	return nil, errors.Errorf("unknown node type: %d", int(node.NodeType))
}

func (p *Planner) createMergeScan(ctx context.Context, node logical.Node) (ExecutionPlan, error) {
	if node.MergeScan.IsPlaceholder {
		return nil, errors.Wrap(ErrPlanningInvariantViolation, "placeholder merge scan reached physical planning")
	}
	if p.Resolver == nil || p.Clients == nil {
		return nil, errors.New("planner isn't configured for distributed execution")
	}

	input := node.MergeScan.Input
	table, err := scannedTable(input)
	if err != nil {
		return nil, err
	}
	peers, err := p.Resolver.Peers(ctx, table)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't resolve peers of %s", table)
	}
	plan, err := serialization.EncodePlan(input)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't encode sub-plan")
	}
	schema, err := arrowSchema(node)
	if err != nil {
		return nil, err
	}

	return NewMergeScanExec(table, peers, plan, schema, p.Clients), nil
}

// scannedTable returns the single table read by the plan.
func scannedTable(node logical.Node) (meta.TableName, error) {
	var tables []meta.TableName
	var walk func(node logical.Node)
	walk = func(node logical.Node) {
		if node.NodeType == logical.NodeTypeTableScan {
			tables = append(tables, node.TableScan.Table)
		}
		for _, child := range node.Children() {
			walk(child)
		}
	}
	walk(node)

	if len(tables) != 1 {
		return meta.TableName{}, errors.Wrapf(ErrPlanningInvariantViolation, "merge scan input must read exactly one table, reads %d", len(tables))
	}
	return tables[0], nil
}

func arrowSchema(node logical.Node) (*arrow.Schema, error) {
	if err := node.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid logical plan")
	}
	schema, err := datatypes.ToArrowSchema(node.Schema())
	if err != nil {
		return nil, &SchemaConversionError{Err: err}
	}
	return schema, nil
}
