package graph

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

// Node is a renderable plan node. Fields are shown inline, children are drawn as edges
// leaving from the port named after the child.
type Node struct {
	Name     string
	Fields   []Field
	Children []Child
}

type Field struct {
	Name, Value string
}

type Child struct {
	Name string
	Node *Node
}

type Visualizer interface {
	Visualize() *Node
}

func NewNode(name string) *Node {
	return &Node{Name: name}
}

func (n *Node) AddField(name, value string) {
	n.Fields = append(n.Fields, Field{Name: name, Value: value})
}

func (n *Node) AddChild(name string, node *Node) {
	n.Children = append(n.Children, Child{Name: name, Node: node})
}

// Show renders the tree as a left-to-right graphviz digraph of record-shaped nodes.
func Show(node *Node) (*gographviz.Graph, error) {
	g := gographviz.NewGraph()
	g.Directed = true
	if err := g.AddAttr("", "rankdir", "LR"); err != nil {
		return nil, errors.Wrap(err, "couldn't set graph direction")
	}

	w := &dotWriter{
		graph: g,
		ids:   make(map[string]int),
	}
	if _, err := w.addNode(node); err != nil {
		return nil, err
	}
	return g, nil
}

type dotWriter struct {
	graph *gographviz.Graph
	ids   map[string]int
}

var nonIdentifierChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

func identifier(name string) string {
	return nonIdentifierChars.ReplaceAllString(name, "_")
}

func (w *dotWriter) nextID(name string) string {
	base := identifier(name)
	id := fmt.Sprintf("%s_%d", base, w.ids[base])
	w.ids[base]++
	return id
}

var recordLabelEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

func (w *dotWriter) addNode(node *Node) (string, error) {
	sections := []string{fmt.Sprintf("<f0> %s", recordLabelEscaper.Replace(node.Name))}

	if len(node.Fields) > 0 {
		fields := make([]string, len(node.Fields))
		for i, field := range node.Fields {
			fields[i] = fmt.Sprintf(
				"<%s> %s: %s",
				identifier(field.Name),
				recordLabelEscaper.Replace(field.Name),
				recordLabelEscaper.Replace(field.Value),
			)
		}
		sections = append(sections, strings.Join(fields, "|"))
	}
	if len(node.Children) > 0 {
		ports := make([]string, len(node.Children))
		for i, child := range node.Children {
			ports[i] = fmt.Sprintf("<%s> %s", identifier(child.Name), recordLabelEscaper.Replace(child.Name))
		}
		sections = append(sections, strings.Join(ports, "|"))
	}

	id := w.nextID(node.Name)
	if err := w.graph.AddNode("", id, map[string]string{
		"shape": "record",
		"label": fmt.Sprintf(`"{{%s}}"`, strings.Join(sections, "}|{")),
	}); err != nil {
		return "", errors.Wrapf(err, "couldn't add node %s", node.Name)
	}

	for _, child := range node.Children {
		childID, err := w.addNode(child.Node)
		if err != nil {
			return "", err
		}
		if err := w.graph.AddPortEdge(id, identifier(child.Name), childID, "", true, nil); err != nil {
			return "", errors.Wrapf(err, "couldn't connect %s to its %s", node.Name, child.Name)
		}
	}
	return id, nil
}
