package parquet

import (
	"bytes"
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/datasources"
	"github.com/cube2222/octodist/execution"
)

// Open reads the parquet file contents as records with the given schema.
// Columns are matched by name, the file may contain additional ones.
func Open(ctx context.Context, allocator memory.Allocator, data []byte, schema *arrow.Schema) (execution.RecordStream, error) {
	table, err := pqarrow.ReadTable(ctx, bytes.NewReader(data), parquet.NewReaderProperties(allocator), pqarrow.ArrowReadProperties{}, allocator)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read parquet file")
	}
	defer table.Release()

	cols := make([]arrow.Column, schema.NumFields())
	for i, field := range schema.Fields() {
		indices := table.Schema().FieldIndices(field.Name)
		if len(indices) == 0 {
			releaseColumns(cols[:i])
			return nil, errors.Errorf("parquet file is missing column %s", field.Name)
		}
		col := table.Column(indices[0])
		if !compatible(col.DataType(), field.Type) {
			releaseColumns(cols[:i])
			return nil, errors.Errorf("column %s has type %s, expected %s", field.Name, col.DataType(), field.Type)
		}
		col.Retain()
		cols[i] = *col
	}

	projected := array.NewTable(arrow.NewSchema(fieldsOf(cols), nil), cols, table.NumRows())
	releaseColumns(cols)
	defer projected.Release()

	return datasources.NewReaderStream(schema, array.NewTableReader(projected, datasources.BatchSize)), nil
}

func compatible(got, want arrow.DataType) bool {
	if arrow.TypeEqual(got, want) {
		return true
	}
	gotTs, ok1 := got.(*arrow.TimestampType)
	wantTs, ok2 := want.(*arrow.TimestampType)
	return ok1 && ok2 && gotTs.Unit == wantTs.Unit
}

func fieldsOf(cols []arrow.Column) []arrow.Field {
	fields := make([]arrow.Field, len(cols))
	for i := range cols {
		fields[i] = cols[i].Field()
	}
	return fields
}

func releaseColumns(cols []arrow.Column) {
	for i := range cols {
		cols[i].Release()
	}
}
