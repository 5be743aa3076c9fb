package datatypes

import (
	"testing"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrowSchemaConversion(t *testing.T) {
	schema := NewSchema(
		Field{Name: "host", Type: TypeString},
		Field{Name: "ts", Type: TypeTimestamp},
		Field{Name: "cpu", Type: TypeFloat64, Nullable: true},
		Field{Name: "count", Type: TypeInt64},
		Field{Name: "healthy", Type: TypeBoolean, Nullable: true},
	)

	arrowSchema, err := ToArrowSchema(schema)
	require.NoError(t, err)
	assert.Equal(t, 5, arrowSchema.NumFields())
	assert.True(t, arrow.TypeEqual(arrow.FixedWidthTypes.Timestamp_ms, arrowSchema.Field(1).Type))
	assert.True(t, arrowSchema.Field(2).Nullable)

	back, err := FromArrowSchema(arrowSchema)
	require.NoError(t, err)
	assert.Equal(t, schema, back)
}

func TestArrowSchemaConversion_Unsupported(t *testing.T) {
	_, err := ToArrowSchema(NewSchema(Field{Name: "x", Type: Type(42)}))
	assert.True(t, errors.Is(err, ErrSchemaConversion))

	_, err = FromArrowSchema(arrow.NewSchema([]arrow.Field{{Name: "x", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)}}, nil))
	assert.True(t, errors.Is(err, ErrSchemaConversion))

	_, err = FromArrowSchema(nil)
	assert.True(t, errors.Is(err, ErrSchemaConversion))
}

func TestSameColumnTypes(t *testing.T) {
	a := arrow.NewSchema([]arrow.Field{{Name: "a", Type: arrow.PrimitiveTypes.Int64}}, nil)
	b := arrow.NewSchema([]arrow.Field{{Name: "b", Type: arrow.PrimitiveTypes.Int64, Nullable: true}}, nil)
	c := arrow.NewSchema([]arrow.Field{{Name: "a", Type: arrow.BinaryTypes.String}}, nil)

	assert.True(t, SameColumnTypes(a, b))
	assert.False(t, SameColumnTypes(a, c))
	assert.False(t, SameColumnTypes(a, arrow.NewSchema(nil, nil)))
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		want    Type
		wantErr bool
	}{
		{name: "int", want: TypeInt64},
		{name: "float64", want: TypeFloat64},
		{name: "string", want: TypeString},
		{name: "timestamp", want: TypeTimestamp},
		{name: "bool", want: TypeBoolean},
		{name: "decimal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseType(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
