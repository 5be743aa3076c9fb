package formats

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/pkg/errors"
)

// Formatter prints query results.
type Formatter interface {
	SetSchema(schema *arrow.Schema)
	Write(record arrow.Record) error
	Close() error
}

// New returns the formatter with the given name.
func New(name string, w io.Writer) (Formatter, error) {
	switch name {
	case "table", "":
		return NewTableFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	}
	return nil, errors.Errorf("unknown output format: '%s'", name)
}

// ValueString formats a single value for human consumption. Nulls are empty.
func ValueString(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return ""
	}
	switch arr := arr.(type) {
	case *array.Boolean:
		return strconv.FormatBool(arr.Value(i))
	case *array.Int64:
		return strconv.FormatInt(arr.Value(i), 10)
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(i), 'g', -1, 64)
	case *array.String:
		return arr.Value(i)
	case *array.Timestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return arr.Value(i).ToTime(unit).UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprint(arr.GetOneForMarshal(i))
}
