package json

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/octodist/datasources"
	"github.com/cube2222/octodist/execution"
)

var schema = arrow.NewSchema([]arrow.Field{
	{Name: "ts", Type: arrow.FixedWidthTypes.Timestamp_ms, Nullable: true},
	{Name: "host", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "usage", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "cores", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "up", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
}, nil)

func TestOpen(t *testing.T) {
	data := []byte(`{"ts": 1000, "host": "host-1", "usage": 0.5, "cores": 4, "up": true}
{"ts": "2023-01-01T00:00:00Z", "host": "host-2", "usage": 1, "cores": null}

{"host": "host-3", "extra": [1, 2, 3]}
`)

	stream, err := Open(memory.DefaultAllocator, data, schema)
	require.NoError(t, err)

	records, err := execution.ReadAll(context.Background(), stream)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	require.Equal(t, int64(3), rec.NumRows())

	ts := rec.Column(0).(*array.Timestamp)
	assert.Equal(t, arrow.Timestamp(1000), ts.Value(0))
	assert.Equal(t, arrow.Timestamp(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()), ts.Value(1))
	assert.True(t, ts.IsNull(2))

	assert.Equal(t, "host-3", rec.Column(1).(*array.String).Value(2))
	assert.Equal(t, 1.0, rec.Column(2).(*array.Float64).Value(1))
	assert.True(t, rec.Column(3).(*array.Int64).IsNull(1))
	assert.True(t, rec.Column(4).(*array.Boolean).Value(0))
	assert.True(t, rec.Column(4).(*array.Boolean).IsNull(2))
}

func TestOpen_Batches(t *testing.T) {
	var sb strings.Builder
	rows := datasources.BatchSize + 10
	for i := 0; i < rows; i++ {
		sb.WriteString(`{"cores": 1}` + "\n")
	}

	stream, err := Open(memory.DefaultAllocator, []byte(sb.String()), schema)
	require.NoError(t, err)

	records, err := execution.ReadAll(context.Background(), stream)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(datasources.BatchSize), records[0].NumRows())
	assert.Equal(t, int64(10), records[1].NumRows())
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  string
	}{
		{name: "invalid json", data: "{\"cores\": 1}\n{cores", err: "couldn't parse json on line 2"},
		{name: "wrong type", data: `{"cores": "four"}`, err: "couldn't read field cores"},
		{name: "not an object", data: `[1, 2]`, err: "expected object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream, err := Open(memory.DefaultAllocator, []byte(tt.data), schema)
			require.NoError(t, err)

			_, err = execution.ReadAll(context.Background(), stream)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestOpen_UnsupportedType(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{{Name: "x", Type: arrow.PrimitiveTypes.Int32}}, nil)
	_, err := Open(memory.DefaultAllocator, nil, schema)
	assert.Error(t, err)
}
