package datatypes

import (
	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"
)

var ErrSchemaConversion = errors.New("couldn't convert schema")

func ToArrowSchema(schema Schema) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(schema.Fields))
	for i, field := range schema.Fields {
		dt, err := ToArrowType(field.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", field.Name)
		}
		fields[i] = arrow.Field{
			Name:     field.Name,
			Type:     dt,
			Nullable: field.Nullable,
		}
	}
	return arrow.NewSchema(fields, nil), nil
}

func ToArrowType(t Type) (arrow.DataType, error) {
	switch t {
	case TypeNull:
		return arrow.Null, nil
	case TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case TypeString:
		return arrow.BinaryTypes.String, nil
	case TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ms, nil
	}
	return nil, errors.Wrapf(ErrSchemaConversion, "unsupported type %d", int(t))
}

func FromArrowSchema(schema *arrow.Schema) (Schema, error) {
	if schema == nil {
		return Schema{}, errors.Wrap(ErrSchemaConversion, "missing schema")
	}
	fields := make([]Field, schema.NumFields())
	for i, field := range schema.Fields() {
		t, err := FromArrowType(field.Type)
		if err != nil {
			return Schema{}, errors.Wrapf(err, "field %s", field.Name)
		}
		fields[i] = Field{
			Name:     field.Name,
			Type:     t,
			Nullable: field.Nullable,
		}
	}
	return Schema{Fields: fields}, nil
}

func FromArrowType(dt arrow.DataType) (Type, error) {
	switch dt.ID() {
	case arrow.NULL:
		return TypeNull, nil
	case arrow.BOOL:
		return TypeBoolean, nil
	case arrow.INT64:
		return TypeInt64, nil
	case arrow.FLOAT64:
		return TypeFloat64, nil
	case arrow.STRING:
		return TypeString, nil
	case arrow.TIMESTAMP:
		return TypeTimestamp, nil
	}
	return TypeNull, errors.Wrapf(ErrSchemaConversion, "unsupported arrow type %s", dt)
}

// SameColumnTypes reports whether both schemas have the same column types in the same order.
// Field names and nullability are not compared.
func SameColumnTypes(a, b *arrow.Schema) bool {
	if a.NumFields() != b.NumFields() {
		return false
	}
	for i := 0; i < a.NumFields(); i++ {
		if !arrow.TypeEqual(a.Field(i).Type, b.Field(i).Type) {
			return false
		}
	}
	return true
}
