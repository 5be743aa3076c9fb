package logical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/octodist/datatypes"
)

func TestParsePredicate(t *testing.T) {
	schema := datatypes.NewSchema(
		datatypes.Field{Name: "ts", Type: datatypes.TypeTimestamp},
		datatypes.Field{Name: "host", Type: datatypes.TypeString},
		datatypes.Field{Name: "usage", Type: datatypes.TypeFloat64},
		datatypes.Field{Name: "cores", Type: datatypes.TypeInt64},
	)

	tests := []struct {
		text string
		want Expression
	}{
		{
			text: "usage > 0.5",
			want: NewBinaryOp(OpGreater, NewColumnIndex(2, "usage"), NewFloat(0.5)),
		},
		{
			text: "host = 'h 1' and cores>=4",
			want: NewAnd(
				NewBinaryOp(OpEqual, NewColumnIndex(1, "host"), NewString("h 1")),
				NewBinaryOp(OpGreaterEqual, NewColumnIndex(3, "cores"), NewInt(4)),
			),
		},
		{
			text: "host = 'a and b'",
			want: NewBinaryOp(OpEqual, NewColumnIndex(1, "host"), NewString("a and b")),
		},
		{
			text: "host = 'rack AND 2' AND cores > 2",
			want: NewAnd(
				NewBinaryOp(OpEqual, NewColumnIndex(1, "host"), NewString("rack AND 2")),
				NewBinaryOp(OpGreater, NewColumnIndex(3, "cores"), NewInt(2)),
			),
		},
		{
			text: "ts < '1970-01-01T00:00:01Z' AND ts != 5",
			want: NewAnd(
				NewBinaryOp(OpLess, NewColumnIndex(0, "ts"), NewTimestamp(1000)),
				NewBinaryOp(OpNotEqual, NewColumnIndex(0, "ts"), NewTimestamp(5)),
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParsePredicate(schema, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			field, err := got.Field(schema)
			require.NoError(t, err)
			assert.Equal(t, datatypes.TypeBoolean, field.Type)
		})
	}
}

func TestParsePredicate_Errors(t *testing.T) {
	schema := datatypes.NewSchema(
		datatypes.Field{Name: "host", Type: datatypes.TypeString},
		datatypes.Field{Name: "cores", Type: datatypes.TypeInt64},
	)

	tests := []struct {
		text string
		err  string
	}{
		{text: "cores", err: "invalid comparison: 'cores'"},
		{text: "region = 'eu'", err: "unknown column: region"},
		{text: "cores > many", err: "column cores: invalid int: many"},
		{text: "cores > 1 AND", err: "column cores: invalid int: 1 AND"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := ParsePredicate(schema, tt.text)
			assert.EqualError(t, err, tt.err)
		})
	}
}
