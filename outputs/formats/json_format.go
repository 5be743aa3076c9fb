package formats

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/valyala/fastjson"
)

// JSONFormatter writes one json object per row.
type JSONFormatter struct {
	buf    []byte
	arena  *fastjson.Arena
	w      io.Writer
	fields []arrow.Field
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{
		buf:   make([]byte, 0, 1024),
		arena: new(fastjson.Arena),
		w:     w,
	}
}

func (t *JSONFormatter) SetSchema(schema *arrow.Schema) {
	t.fields = schema.Fields()
}

func (t *JSONFormatter) Write(record arrow.Record) error {
	for row := 0; row < int(record.NumRows()); row++ {
		obj := t.arena.NewObject()
		for i := range t.fields {
			obj.Set(t.fields[i].Name, ValueToJson(t.arena, record.Column(i), row))
		}

		t.buf = obj.MarshalTo(t.buf)
		t.buf = append(t.buf, '\n')
		_, err := t.w.Write(t.buf)
		t.buf = t.buf[:0]
		t.arena.Reset()
		if err != nil {
			return err
		}
	}
	return nil
}

func ValueToJson(arena *fastjson.Arena, arr arrow.Array, i int) *fastjson.Value {
	if arr.IsNull(i) {
		return arena.NewNull()
	}
	switch arr := arr.(type) {
	case *array.Boolean:
		if arr.Value(i) {
			return arena.NewTrue()
		}
		return arena.NewFalse()
	case *array.Int64:
		return arena.NewNumberString(strconv.FormatInt(arr.Value(i), 10))
	case *array.Float64:
		return arena.NewNumberFloat64(arr.Value(i))
	case *array.String:
		return arena.NewString(arr.Value(i))
	case *array.Timestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return arena.NewString(arr.Value(i).ToTime(unit).UTC().Format(time.RFC3339Nano))
	}
	return arena.NewString(fmt.Sprint(arr.GetOneForMarshal(i)))
}

func (t *JSONFormatter) Close() error {
	return nil
}
