package datatypes

import (
	"github.com/pkg/errors"
)

type Type int

const (
	TypeNull Type = iota
	TypeBoolean
	TypeInt64
	TypeFloat64
	TypeString
	TypeTimestamp
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeTimestamp:
		return "timestamp"
	}
	return "unknown"
}

func ParseType(name string) (Type, error) {
	switch name {
	case "null":
		return TypeNull, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	case "int64", "int":
		return TypeInt64, nil
	case "float64", "float", "double":
		return TypeFloat64, nil
	case "string":
		return TypeString, nil
	case "timestamp", "time":
		return TypeTimestamp, nil
	}
	return TypeNull, errors.Errorf("unknown type: %s", name)
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Field describes a single column.
type Field struct {
	Name     string `json:"name" yaml:"name"`
	Type     Type   `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable,omitempty" yaml:"nullable"`
}

type Schema struct {
	Fields []Field `json:"fields" yaml:"fields"`
}

func NewSchema(fields ...Field) Schema {
	return Schema{Fields: fields}
}

// FieldIndex returns -1 if there's no field with the given name.
func (s Schema) FieldIndex(name string) int {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// Project returns the schema consisting only of the given column indices, in order.
func (s Schema) Project(indices []int) (Schema, error) {
	fields := make([]Field, len(indices))
	for i, index := range indices {
		if index < 0 || index >= len(s.Fields) {
			return Schema{}, errors.Errorf("projection index %d out of range for schema with %d fields", index, len(s.Fields))
		}
		fields[i] = s.Fields[index]
	}
	return Schema{Fields: fields}, nil
}
