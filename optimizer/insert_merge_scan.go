package optimizer

import (
	. "github.com/cube2222/octodist/logical"
)

// InsertMergeScans wraps every scan of a distributed table in a placeholder merge scan.
// It must run once, before the other rules.
func InsertMergeScans(node Node, routes Routes) Node {
	isRemoteScan := func(node Node) bool {
		return node.NodeType == NodeTypeTableScan && routes.IsDistributed(node.TableScan.Table)
	}

	t := Transformers{
		NodeTransformer: func(node Node) Node {
			if node.NodeType == NodeTypeMergeScan {
				return node
			}
			children := node.Children()
			replaced := false
			for i := range children {
				if isRemoteScan(children[i]) {
					children[i] = NewMergeScan(children[i], true)
					replaced = true
				}
			}
			if !replaced {
				return node
			}
			out, err := node.WithNewChildren(children)
			if err != nil {
				panic(err)
			}
			return out
		},
	}
	output := t.TransformNode(node)

	if isRemoteScan(output) {
		return NewMergeScan(output, true)
	}
	return output
}

// FinalizeMergeScans marks all placeholder merge scans as resolved.
func FinalizeMergeScans(node Node) Node {
	t := Transformers{
		NodeTransformer: func(node Node) Node {
			if mergeScan, ok := UnwrapMergeScan(node); ok && mergeScan.IsPlaceholder {
				return NewMergeScan(mergeScan.Input, false)
			}
			return node
		},
	}
	return t.TransformNode(node)
}
