package logical

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/graph"
	"github.com/cube2222/octodist/meta"
)

type Node struct {
	NodeType NodeType `json:"type"`
	// Only one of the below may be non-null.
	TableScan  *TableScan  `json:"table_scan,omitempty"`
	Filter     *Filter     `json:"filter,omitempty"`
	Projection *Projection `json:"projection,omitempty"`
	Limit      *Limit      `json:"limit,omitempty"`
	MergeScan  *MergeScan  `json:"merge_scan,omitempty"`
}

type NodeType int

const (
	NodeTypeTableScan NodeType = iota
	NodeTypeFilter
	NodeTypeProjection
	NodeTypeLimit
	NodeTypeMergeScan
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeTableScan:
		return "table_scan"
	case NodeTypeFilter:
		return "filter"
	case NodeTypeProjection:
		return "projection"
	case NodeTypeLimit:
		return "limit"
	case NodeTypeMergeScan:
		return "merge_scan"
	}
	return "unknown"
}

// TableScan reads a table. TableSchema is the full schema of the table,
// Projection optionally narrows it down to the given column indices.
type TableScan struct {
	Table       meta.TableName   `json:"table"`
	TableSchema datatypes.Schema `json:"table_schema"`
	Projection  []int            `json:"projection,omitempty"`
}

type Filter struct {
	Source    Node       `json:"source"`
	Predicate Expression `json:"predicate"`
}

type Projection struct {
	Source      Node         `json:"source"`
	Expressions []Expression `json:"expressions"`
	Aliases     []string     `json:"aliases"`
}

type Limit struct {
	Source Node  `json:"source"`
	Limit  int64 `json:"limit"`
}

// MergeScan marks the boundary between the part of the plan executed on the datanodes
// and the part executed locally. The placeholder flag is set while the boundary's
// position is still being decided by the optimizer.
type MergeScan struct {
	Input         Node `json:"input"`
	IsPlaceholder bool `json:"is_placeholder"`
}

func NewTableScan(table meta.TableName, schema datatypes.Schema, projection []int) Node {
	return Node{
		NodeType: NodeTypeTableScan,
		TableScan: &TableScan{
			Table:       table,
			TableSchema: schema,
			Projection:  projection,
		},
	}
}

func NewFilter(source Node, predicate Expression) Node {
	return Node{
		NodeType: NodeTypeFilter,
		Filter: &Filter{
			Source:    source,
			Predicate: predicate,
		},
	}
}

func NewProjection(source Node, expressions []Expression, aliases []string) Node {
	return Node{
		NodeType: NodeTypeProjection,
		Projection: &Projection{
			Source:      source,
			Expressions: expressions,
			Aliases:     aliases,
		},
	}
}

func NewLimit(source Node, limit int64) Node {
	return Node{
		NodeType: NodeTypeLimit,
		Limit: &Limit{
			Source: source,
			Limit:  limit,
		},
	}
}

func NewMergeScan(input Node, isPlaceholder bool) Node {
	return Node{
		NodeType: NodeTypeMergeScan,
		MergeScan: &MergeScan{
			Input:         input,
			IsPlaceholder: isPlaceholder,
		},
	}
}

// UnwrapMergeScan returns the merge scan if the node is one.
func UnwrapMergeScan(node Node) (*MergeScan, bool) {
	if node.NodeType != NodeTypeMergeScan || node.MergeScan == nil {
		return nil, false
	}
	return node.MergeScan, true
}

func (node Node) Children() []Node {
	switch node.NodeType {
	case NodeTypeTableScan:
		return nil
	case NodeTypeFilter:
		return []Node{node.Filter.Source}
	case NodeTypeProjection:
		return []Node{node.Projection.Source}
	case NodeTypeLimit:
		return []Node{node.Limit.Source}
	case NodeTypeMergeScan:
		return []Node{node.MergeScan.Input}
	}
	panic("unexhaustive node type match")
}

// Expressions returns the expressions evaluated by the node itself.
// A merge scan evaluates nothing on its own and forwards its input's.
func (node Node) Expressions() []Expression {
	switch node.NodeType {
	case NodeTypeTableScan, NodeTypeLimit:
		return nil
	case NodeTypeFilter:
		return []Expression{node.Filter.Predicate}
	case NodeTypeProjection:
		return node.Projection.Expressions
	case NodeTypeMergeScan:
		return node.MergeScan.Input.Expressions()
	}
	panic("unexhaustive node type match")
}

func (node Node) WithNewChildren(children []Node) (Node, error) {
	if node.NodeType == NodeTypeTableScan {
		if len(children) != 0 {
			return Node{}, errors.Errorf("table scan takes no children, got %d", len(children))
		}
		return node, nil
	}
	if len(children) != 1 {
		return Node{}, errors.Errorf("%s takes exactly one child, got %d", node.NodeType, len(children))
	}

	switch node.NodeType {
	case NodeTypeFilter:
		return NewFilter(children[0], node.Filter.Predicate), nil
	case NodeTypeProjection:
		return NewProjection(children[0], node.Projection.Expressions, node.Projection.Aliases), nil
	case NodeTypeLimit:
		return NewLimit(children[0], node.Limit.Limit), nil
	case NodeTypeMergeScan:
		return NewMergeScan(children[0], node.MergeScan.IsPlaceholder), nil
	}
	panic("unexhaustive node type match")
}

// Schema returns the output schema of the node.
// Nodes which passed Validate always have a well-defined schema.
func (node Node) Schema() datatypes.Schema {
	schema, err := node.schema()
	if err != nil {
		panic(fmt.Sprintf("invalid logical plan: %s", err))
	}
	return schema
}

func (node Node) schema() (datatypes.Schema, error) {
	switch node.NodeType {
	case NodeTypeTableScan:
		if node.TableScan.Projection == nil {
			return node.TableScan.TableSchema, nil
		}
		return node.TableScan.TableSchema.Project(node.TableScan.Projection)
	case NodeTypeFilter:
		return node.Filter.Source.schema()
	case NodeTypeLimit:
		return node.Limit.Source.schema()
	case NodeTypeMergeScan:
		return node.MergeScan.Input.schema()
	case NodeTypeProjection:
		sourceSchema, err := node.Projection.Source.schema()
		if err != nil {
			return datatypes.Schema{}, err
		}
		fields := make([]datatypes.Field, len(node.Projection.Expressions))
		for i, expr := range node.Projection.Expressions {
			field, err := expr.Field(sourceSchema)
			if err != nil {
				return datatypes.Schema{}, errors.Wrapf(err, "couldn't type projection expression with index %d", i)
			}
			if i < len(node.Projection.Aliases) && node.Projection.Aliases[i] != "" {
				field.Name = node.Projection.Aliases[i]
			}
			fields[i] = field
		}
		return datatypes.Schema{Fields: fields}, nil
	}
	panic("unexhaustive node type match")
}

// Validate checks that all column references resolve and that all expressions typecheck.
func (node Node) Validate() error {
	if err := node.validateVariant(); err != nil {
		return err
	}
	for i, child := range node.Children() {
		if err := child.Validate(); err != nil {
			return errors.Wrapf(err, "invalid child %d of %s", i, node.NodeType)
		}
	}
	if node.NodeType == NodeTypeFilter {
		sourceSchema, _ := node.Filter.Source.schema()
		field, err := node.Filter.Predicate.Field(sourceSchema)
		if err != nil {
			return errors.Wrap(err, "couldn't type filter predicate")
		}
		if field.Type != datatypes.TypeBoolean {
			return errors.Errorf("filter predicate must be boolean, is %s", field.Type)
		}
	}
	if node.NodeType == NodeTypeLimit && node.Limit.Limit < 0 {
		return errors.Errorf("limit must be non-negative, is %d", node.Limit.Limit)
	}
	if _, err := node.schema(); err != nil {
		return err
	}
	return nil
}

func (node Node) validateVariant() error {
	var set bool
	switch node.NodeType {
	case NodeTypeTableScan:
		set = node.TableScan != nil
	case NodeTypeFilter:
		set = node.Filter != nil
	case NodeTypeProjection:
		set = node.Projection != nil
	case NodeTypeLimit:
		set = node.Limit != nil
	case NodeTypeMergeScan:
		set = node.MergeScan != nil
	default:
		return errors.Errorf("unknown node type: %d", int(node.NodeType))
	}
	if !set {
		return errors.Errorf("missing %s payload", node.NodeType)
	}
	return nil
}

// nodeData has the fields of Node without its methods, so that cmp and hashstructure
// walk the fields instead of calling back into Equal and Hash.
type nodeData Node

// Equal compares nodes structurally, including the merge scan placeholder flag.
func (node Node) Equal(other Node) bool {
	return cmp.Equal(nodeData(node), nodeData(other))
}

// Hash is consistent with Equal.
func (node Node) Hash() (uint64, error) {
	return hashstructure.Hash(nodeData(node), nil)
}

func (node Node) String() string {
	return strings.TrimSuffix(graph.Format(node.Visualize()), "\n")
}

func (node Node) Visualize() *graph.Node {
	var out *graph.Node
	switch node.NodeType {
	case NodeTypeTableScan:
		out = graph.NewNode("TableScan")
		out.AddField("table", node.TableScan.Table.String())
		if node.TableScan.Projection != nil {
			out.AddField("projection", fmt.Sprint(node.TableScan.Projection))
		}
	case NodeTypeFilter:
		out = graph.NewNode("Filter")
		out.AddField("predicate", node.Filter.Predicate.String())
		out.AddChild("source", node.Filter.Source.Visualize())
	case NodeTypeProjection:
		out = graph.NewNode("Projection")
		exprs := make([]string, len(node.Projection.Expressions))
		for i, expr := range node.Projection.Expressions {
			exprs[i] = expr.String()
			if i < len(node.Projection.Aliases) && node.Projection.Aliases[i] != "" {
				exprs[i] += " AS " + node.Projection.Aliases[i]
			}
		}
		out.AddField("expressions", strings.Join(exprs, ", "))
		out.AddChild("source", node.Projection.Source.Visualize())
	case NodeTypeLimit:
		out = graph.NewNode("Limit")
		out.AddField("limit", fmt.Sprint(node.Limit.Limit))
		out.AddChild("source", node.Limit.Source.Visualize())
	case NodeTypeMergeScan:
		out = graph.NewNode("MergeScan")
		out.AddField("is_placeholder", fmt.Sprint(node.MergeScan.IsPlaceholder))
		out.AddChild("input", node.MergeScan.Input.Visualize())
	default:
		panic("unexhaustive node type match")
	}
	return out
}
