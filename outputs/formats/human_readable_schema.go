package formats

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/cube2222/octodist/datatypes"
)

// WriteSchema renders the fields of a schema as a table.
func WriteSchema(w io.Writer, schema datatypes.Schema) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"name", "type", "nullable"})
	table.SetAutoFormatHeaders(false)
	for _, field := range schema.Fields {
		nullable := "false"
		if field.Nullable {
			nullable = "true"
		}
		table.Append([]string{field.Name, field.Type.String(), nullable})
	}
	table.Render()
}
