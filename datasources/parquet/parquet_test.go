package parquet

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/compress"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/octodist/execution"
)

var fileSchema = arrow.NewSchema([]arrow.Field{
	{Name: "host", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "usage", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "cores", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
}, nil)

func writeParquet(t *testing.T) []byte {
	pool := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(pool, fileSchema)
	defer builder.Release()

	builder.Field(0).(*array.StringBuilder).AppendValues([]string{"host-1", "host-2", "host-3"}, nil)
	builder.Field(1).(*array.Float64Builder).AppendValues([]float64{0.5, 0, 0.25}, []bool{true, false, true})
	builder.Field(2).(*array.Int64Builder).AppendValues([]int64{4, 8, 16}, nil)

	record := builder.NewRecord()
	defer record.Release()

	buf := new(bytes.Buffer)
	writerProps := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Uncompressed))
	writer, err := pqarrow.NewFileWriter(fileSchema, buf, writerProps, pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, writer.Write(record))
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	data := writeParquet(t)
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "cores", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "usage", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)

	stream, err := Open(context.Background(), memory.DefaultAllocator, data, schema)
	require.NoError(t, err)
	assert.True(t, stream.Schema().Equal(schema))

	records, err := execution.ReadAll(context.Background(), stream)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.True(t, rec.Schema().Equal(schema))
	assert.Equal(t, []int64{4, 8, 16}, rec.Column(0).(*array.Int64).Int64Values())
	assert.True(t, rec.Column(1).IsNull(1))
	assert.Equal(t, 0.25, rec.Column(1).(*array.Float64).Value(2))
}

func TestOpen_MissingColumn(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "host", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "region", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	_, err := Open(context.Background(), memory.DefaultAllocator, writeParquet(t), schema)
	assert.EqualError(t, err, "parquet file is missing column region")
}

func TestOpen_TypeMismatch(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "host", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)

	_, err := Open(context.Background(), memory.DefaultAllocator, writeParquet(t), schema)
	assert.Error(t, err)
}

func TestOpen_Corrupt(t *testing.T) {
	_, err := Open(context.Background(), memory.DefaultAllocator, []byte("not a parquet file"), fileSchema)
	assert.Error(t, err)
}
