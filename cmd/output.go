package cmd

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"

	"github.com/tabledriver/typeschema/arrowconv"
	"github.com/tabledriver/typeschema/graph"
	"github.com/tabledriver/typeschema/schema"
)

func writeFields(w io.Writer, fields []schema.Field) error {
	if debugDump {
		spew.Fdump(w, fields)
	}

	switch output {
	case "table":
		table := tablewriter.NewWriter(w)
		table.SetColWidth(64)
		table.SetRowLine(false)
		table.SetHeader([]string{"name", "type", "nullable"})
		table.SetAutoFormatHeaders(false)
		for _, field := range fields {
			table.Append([]string{field.Name, field.Type.String(), fmt.Sprint(field.Nullable)})
		}
		table.Render()
		return nil
	case "dot":
		g := graph.Show(graph.TypeNode(schema.Schema{
			Type:     schema.StructOf(fields...),
			Nullable: false,
		}))
		_, err := fmt.Fprint(w, g.String())
		return err
	case "arrow":
		_, err := fmt.Fprintln(w, arrowconv.ToArrowSchema(fields).String())
		return err
	}
	return fmt.Errorf("invalid output format: %s", output)
}
