package graph

import (
	"strings"
	"testing"

	"github.com/tabledriver/typeschema/schema"
)

func TestShowTypeNode(t *testing.T) {
	derived := schema.Schema{
		Type: schema.StructOf(
			schema.Field{Name: "id", Type: schema.Long, Nullable: false},
			schema.Field{Name: "tags", Type: schema.ArrayOf(schema.String, true), Nullable: true},
		),
		Nullable: true,
	}

	g := Show(TypeNode(derived))
	out := g.String()

	for _, want := range []string{"Struct", "Array", "Long", "String", "containsNull"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered graph should mention %q:\n%s", want, out)
		}
	}
	if len(g.Edges.Edges) != 3 {
		t.Errorf("expected 3 edges (two struct fields, one array element), got %d", len(g.Edges.Edges))
	}
}
