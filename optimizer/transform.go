package optimizer

import (
	. "github.com/cube2222/octodist/logical"
)

type Transformers struct {
	NodeTransformer       func(node Node) Node
	ExpressionTransformer func(expr Expression) Expression
}

// TransformNode rebuilds the tree bottom-up, applying the transformers to every node and expression.
func (t *Transformers) TransformNode(node Node) Node {
	var out Node
	switch node.NodeType {
	case NodeTypeTableScan:
		var projection []int
		if node.TableScan.Projection != nil {
			projection = make([]int, len(node.TableScan.Projection))
			copy(projection, node.TableScan.Projection)
		}
		out = NewTableScan(node.TableScan.Table, node.TableScan.TableSchema, projection)
	case NodeTypeFilter:
		out = NewFilter(
			t.TransformNode(node.Filter.Source),
			t.TransformExpr(node.Filter.Predicate),
		)
	case NodeTypeProjection:
		expressions := make([]Expression, len(node.Projection.Expressions))
		for i := range node.Projection.Expressions {
			expressions[i] = t.TransformExpr(node.Projection.Expressions[i])
		}
		var aliases []string
		if node.Projection.Aliases != nil {
			aliases = make([]string, len(node.Projection.Aliases))
			copy(aliases, node.Projection.Aliases)
		}
		out = NewProjection(t.TransformNode(node.Projection.Source), expressions, aliases)
	case NodeTypeLimit:
		out = NewLimit(t.TransformNode(node.Limit.Source), node.Limit.Limit)
	case NodeTypeMergeScan:
		out = NewMergeScan(t.TransformNode(node.MergeScan.Input), node.MergeScan.IsPlaceholder)
	default:
		panic("unexhaustive node type match")
	}

	if t.NodeTransformer != nil {
		out = t.NodeTransformer(out)
	}

	return out
}

func (t *Transformers) TransformExpr(expr Expression) Expression {
	var out Expression
	switch expr.ExpressionType {
	case ExpressionTypeColumn:
		out = NewColumnIndex(expr.Column.Index, expr.Column.Name)
	case ExpressionTypeLiteral:
		literal := *expr.Literal
		out = Expression{
			ExpressionType: expr.ExpressionType,
			Literal:        &literal,
		}
	case ExpressionTypeBinaryOp:
		out = NewBinaryOp(
			expr.BinaryOp.Op,
			t.TransformExpr(expr.BinaryOp.Left),
			t.TransformExpr(expr.BinaryOp.Right),
		)
	default:
		panic("unexhaustive expression type match")
	}

	if t.ExpressionTransformer != nil {
		out = t.ExpressionTransformer(out)
	}

	return out
}
