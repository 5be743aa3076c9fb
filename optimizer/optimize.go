package optimizer

import (
	"github.com/cube2222/octodist/logical"
	"github.com/cube2222/octodist/meta"
)

// Routes tells the optimizer which tables are stored on datanodes.
type Routes interface {
	IsDistributed(table meta.TableName) bool
}

var defaultOptimizationRules = []func(logical.Node) (output logical.Node, changed bool){
	PullFilterIntoMergeScan,
	PullProjectionIntoMergeScan,
	PullLimitIntoMergeScan,
	MergeFilters,
}

// Distribute turns a single-node plan into a distributed one.
// Scans of distributed tables get wrapped in merge scans, which then absorb as much of
// the plan above them as can be evaluated on the datanodes.
// All merge scans in the output are resolved.
func Distribute(node logical.Node, routes Routes) logical.Node {
	node = InsertMergeScans(node, routes)
	node = Optimize(node)
	return FinalizeMergeScans(node)
}

func Optimize(node logical.Node) logical.Node {
	changed := true
	for changed {
		changed = false
		for _, rule := range defaultOptimizationRules {
			output, curChanged := rule(node)
			if curChanged {
				changed = true
				node = output
			}
		}
	}
	return node
}
