package optimizer

import (
	. "github.com/cube2222/octodist/logical"
)

func MergeFilters(node Node) (Node, bool) {
	changed := false
	t := Transformers{
		NodeTransformer: func(node Node) Node {
			if node.NodeType != NodeTypeFilter {
				return node
			}
			if node.Filter.Source.NodeType != NodeTypeFilter {
				return node
			}
			changed = true

			return NewFilter(
				node.Filter.Source.Filter.Source,
				NewAnd(append(node.Filter.Predicate.SplitByAnd(), node.Filter.Source.Filter.Predicate.SplitByAnd()...)...),
			)
		},
	}
	output := t.TransformNode(node)

	if changed {
		return output, true
	} else {
		return node, false
	}
}
