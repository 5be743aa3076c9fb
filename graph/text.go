package graph

import (
	"fmt"
	"strings"
)

// Format renders the tree as indented text, one node per line.
func Format(node *Node) string {
	var sb strings.Builder
	formatNode(&sb, node, 0, "")
	return sb.String()
}

func formatNode(sb *strings.Builder, node *Node, depth int, edge string) {
	sb.WriteString(strings.Repeat("  ", depth))
	if edge != "" {
		sb.WriteString(edge)
		sb.WriteString(": ")
	}
	sb.WriteString(node.Name)
	if len(node.Fields) > 0 {
		fields := make([]string, len(node.Fields))
		for i, field := range node.Fields {
			fields[i] = fmt.Sprintf("%s=%s", field.Name, field.Value)
		}
		sb.WriteString(" [")
		sb.WriteString(strings.Join(fields, ", "))
		sb.WriteString("]")
	}
	sb.WriteString("\n")
	for _, child := range node.Children {
		formatNode(sb, child.Node, depth+1, child.Name)
	}
}
