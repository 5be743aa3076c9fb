package formats

import (
	"encoding/csv"
	"io"

	"github.com/apache/arrow/go/v13/arrow"
)

type CSVFormatter struct {
	writer *csv.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	writer := csv.NewWriter(w)

	return &CSVFormatter{
		writer: writer,
	}
}

func (t *CSVFormatter) SetSchema(schema *arrow.Schema) {
	header := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	t.writer.Write(header)
}

func (t *CSVFormatter) Write(record arrow.Record) error {
	for row := 0; row < int(record.NumRows()); row++ {
		values := make([]string, record.NumCols())
		for col := range values {
			values[col] = ValueString(record.Column(col), row)
		}
		if err := t.writer.Write(values); err != nil {
			return err
		}
	}
	return nil
}

func (t *CSVFormatter) Close() error {
	t.writer.Flush()
	return t.writer.Error()
}
