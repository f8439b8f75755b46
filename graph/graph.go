package graph

import (
	"fmt"
	"log"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/tabledriver/typeschema/schema"
)

type Field struct {
	Name, Value string
}

type Child struct {
	Name string
	Node *Node
}

type Node struct {
	Name     string
	Fields   []Field
	Children []Child
}

func NewNode(name string) *Node {
	return &Node{
		Name: name,
	}
}

func (n *Node) AddField(name, value string) {
	n.Fields = append(n.Fields, Field{
		Name:  name,
		Value: value,
	})
}

func (n *Node) AddChild(name string, node *Node) {
	n.Children = append(n.Children, Child{
		Name: name,
		Node: node,
	})
}

// TypeNode renders a schema tree as a node tree, one node per composite
// type, nullability attached as a field.
func TypeNode(s schema.Schema) *Node {
	node := typeNode(s.Type)
	node.AddField("nullable", fmt.Sprint(s.Nullable))
	return node
}

func typeNode(t schema.Type) *Node {
	switch t.TypeID {
	case schema.TypeIDArray:
		node := NewNode("Array")
		node.AddField("containsNull", fmt.Sprint(t.Array.ContainsNull))
		node.AddChild("element", typeNode(*t.Array.Element))
		return node
	case schema.TypeIDMap:
		node := NewNode("Map")
		node.AddField("valueContainsNull", fmt.Sprint(t.Map.ValueContainsNull))
		node.AddChild("key", typeNode(*t.Map.Key))
		node.AddChild("value", typeNode(*t.Map.Value))
		return node
	case schema.TypeIDStruct:
		node := NewNode("Struct")
		for _, field := range t.Struct.Fields {
			fieldNode := typeNode(field.Type)
			fieldNode.AddField("nullable", fmt.Sprint(field.Nullable))
			node.AddChild(field.Name, fieldNode)
		}
		return node
	case schema.TypeIDUserDefined:
		node := NewNode("UserDefined")
		node.AddField("name", t.UserDefined.Descriptor.Name())
		node.AddChild("sqlType", typeNode(t.UserDefined.Descriptor.SQLType()))
		return node
	case schema.TypeIDDecimal:
		node := NewNode("Decimal")
		node.AddField("precision", fmt.Sprint(t.Decimal.Precision))
		node.AddField("scale", fmt.Sprint(t.Decimal.Scale))
		return node
	default:
		return NewNode(t.String())
	}
}

func Show(node *Node) *gographviz.Graph {
	graph := gographviz.NewGraph()
	graph.Directed = true
	err := graph.AddAttr("", "rankdir", "LR")
	if err != nil {
		log.Fatal(err)
	}
	builder := &graphBuilder{
		graph:        graph,
		nameCounters: make(map[string]int),
	}

	getGraphNode(builder, node)

	return graph
}

type graphBuilder struct {
	graph        *gographviz.Graph
	nameCounters map[string]int
}

func (gb *graphBuilder) getID(name string) string {
	count := gb.nameCounters[name]
	gb.nameCounters[name]++
	return fmt.Sprintf("%s_%d", strings.Replace(name, " ", "_", -1), count)
}

func getGraphNode(gb *graphBuilder, node *Node) string {
	fields := make([]string, len(node.Fields))
	for i, field := range node.Fields {
		fields[i] = fmt.Sprintf("<%s> %s: %s", field.Name, field.Name, field.Value)
	}
	childPorts := make([]string, len(node.Children))
	for i, child := range node.Children {
		childPorts[i] = fmt.Sprintf("<%s> %s", child.Name, child.Name)
	}

	var labelParts []string
	labelParts = append(labelParts, fmt.Sprintf("<f0> %s", node.Name))

	if len(fields) > 0 {
		labelParts = append(labelParts, strings.Join(fields, "|"))
	}
	if len(childPorts) > 0 {
		labelParts = append(labelParts, strings.Join(childPorts, "|"))
	}

	label := fmt.Sprintf(
		"\"{{%s}}\"",
		strings.Join(labelParts, "}|{"),
	)

	id := gb.getID(node.Name)
	err := gb.graph.AddNode("", id, map[string]string{
		"shape": "record",
		"label": label,
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, child := range node.Children {
		childGraphNode := getGraphNode(gb, child.Node)
		err := gb.graph.AddPortEdge(id, child.Name, childGraphNode, "", true, map[string]string{})
		if err != nil {
			log.Fatal(err)
		}
	}
	return id
}
