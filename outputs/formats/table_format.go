package formats

import (
	"io"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter buffers all rows and renders them on Close.
type TableFormatter struct {
	table *tablewriter.Table
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	table := tablewriter.NewWriter(w)
	table.SetColWidth(24)
	table.SetRowLine(false)

	return &TableFormatter{
		table: table,
	}
}

func (t *TableFormatter) SetSchema(schema *arrow.Schema) {
	header := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	t.table.SetHeader(header)
	t.table.SetAutoFormatHeaders(false)
}

func (t *TableFormatter) Write(record arrow.Record) error {
	for row := 0; row < int(record.NumRows()); row++ {
		values := make([]string, record.NumCols())
		for col := range values {
			values[col] = ValueString(record.Column(col), row)
		}
		t.table.Append(values)
	}
	return nil
}

func (t *TableFormatter) Close() error {
	t.table.Render()
	return nil
}
