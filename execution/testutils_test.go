package execution

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
)

var testSchema = arrow.NewSchema(
	[]arrow.Field{
		{Name: "host", Type: arrow.BinaryTypes.String},
		{Name: "value", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	},
	nil,
)

func makeRecord(hosts []string, values []int64) arrow.Record {
	b := array.NewRecordBuilder(memory.DefaultAllocator, testSchema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues(hosts, nil)
	b.Field(1).(*array.Int64Builder).AppendValues(values, nil)
	return b.NewRecord()
}

func int64Column(t interface{ Helper() }, records []arrow.Record, index int) []int64 {
	t.Helper()
	var out []int64
	for _, rec := range records {
		out = append(out, rec.Column(index).(*array.Int64).Int64Values()...)
	}
	return out
}

type failingStream struct {
	err    error
	closed bool
}

func (f *failingStream) Schema() *arrow.Schema {
	return testSchema
}

func (f *failingStream) Next(ctx context.Context) (arrow.Record, error) {
	return nil, f.err
}

func (f *failingStream) Close() error {
	f.closed = true
	return nil
}
