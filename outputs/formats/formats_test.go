package formats

import (
	"bytes"
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schema = arrow.NewSchema([]arrow.Field{
	{Name: "ts", Type: arrow.FixedWidthTypes.Timestamp_ms, Nullable: true},
	{Name: "host", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "usage", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "cores", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "up", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
}, nil)

func makeRecord() arrow.Record {
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{1000, 0}, []bool{true, false})
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"host-1", "host-2"}, nil)
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{0.5, 0}, []bool{true, false})
	b.Field(3).(*array.Int64Builder).AppendValues([]int64{4, 8}, nil)
	b.Field(4).(*array.BooleanBuilder).AppendValues([]bool{true, false}, nil)
	return b.NewRecord()
}

func write(t *testing.T, f Formatter) {
	rec := makeRecord()
	defer rec.Release()
	f.SetSchema(schema)
	require.NoError(t, f.Write(rec))
	require.NoError(t, f.Close())
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	write(t, NewCSVFormatter(&buf))
	assert.Equal(t, "ts,host,usage,cores,up\n1970-01-01T00:00:01Z,host-1,0.5,4,true\n,host-2,,8,false\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	write(t, NewJSONFormatter(&buf))
	assert.Equal(t,
		`{"ts":"1970-01-01T00:00:01Z","host":"host-1","usage":0.5,"cores":4,"up":true}`+"\n"+
			`{"ts":null,"host":"host-2","usage":null,"cores":8,"up":false}`+"\n",
		buf.String(),
	)
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	write(t, NewTableFormatter(&buf))
	out := buf.String()
	assert.Contains(t, out, "host")
	assert.Contains(t, out, "host-1")
	assert.Contains(t, out, "1970-01-01T00:00:01Z")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, name := range []string{"", "table", "csv", "json"} {
		_, err := New(name, &buf)
		assert.NoError(t, err, name)
	}
	_, err := New("xml", &buf)
	assert.EqualError(t, err, "unknown output format: 'xml'")
}
