package optimizer

import (
	. "github.com/cube2222/octodist/logical"
)

// PullFilterIntoMergeScan moves filters below placeholder merge scans, so that they're evaluated on the datanodes.
func PullFilterIntoMergeScan(node Node) (Node, bool) {
	changed := false
	t := Transformers{
		NodeTransformer: func(node Node) Node {
			if node.NodeType != NodeTypeFilter {
				return node
			}
			mergeScan, ok := UnwrapMergeScan(node.Filter.Source)
			if !ok || !mergeScan.IsPlaceholder {
				return node
			}
			changed = true

			return NewMergeScan(NewFilter(mergeScan.Input, node.Filter.Predicate), true)
		},
	}
	output := t.TransformNode(node)

	if changed {
		return output, true
	} else {
		return node, false
	}
}

// PullProjectionIntoMergeScan moves projections below placeholder merge scans.
func PullProjectionIntoMergeScan(node Node) (Node, bool) {
	changed := false
	t := Transformers{
		NodeTransformer: func(node Node) Node {
			if node.NodeType != NodeTypeProjection {
				return node
			}
			mergeScan, ok := UnwrapMergeScan(node.Projection.Source)
			if !ok || !mergeScan.IsPlaceholder {
				return node
			}
			changed = true

			return NewMergeScan(NewProjection(mergeScan.Input, node.Projection.Expressions, node.Projection.Aliases), true)
		},
	}
	output := t.TransformNode(node)

	if changed {
		return output, true
	} else {
		return node, false
	}
}

// PullLimitIntoMergeScan copies limits below placeholder merge scans.
// Every datanode only has to return limit rows, but the limit still has to be applied
// again after merging, so the original one stays in place.
func PullLimitIntoMergeScan(node Node) (Node, bool) {
	changed := false
	t := Transformers{
		NodeTransformer: func(node Node) Node {
			if node.NodeType != NodeTypeLimit {
				return node
			}
			mergeScan, ok := UnwrapMergeScan(node.Limit.Source)
			if !ok || !mergeScan.IsPlaceholder {
				return node
			}
			input := mergeScan.Input
			if input.NodeType == NodeTypeLimit && input.Limit.Limit <= node.Limit.Limit {
				return node
			}
			if input.NodeType == NodeTypeLimit {
				input = input.Limit.Source
			}
			changed = true

			return NewLimit(NewMergeScan(NewLimit(input, node.Limit.Limit), true), node.Limit.Limit)
		},
	}
	output := t.TransformNode(node)

	if changed {
		return output, true
	} else {
		return node, false
	}
}
