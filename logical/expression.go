package logical

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/cube2222/octodist/datatypes"
)

type Expression struct {
	ExpressionType ExpressionType `json:"type"`
	// Only one of the below may be non-null.
	Column   *Column   `json:"column,omitempty"`
	Literal  *Literal  `json:"literal,omitempty"`
	BinaryOp *BinaryOp `json:"binary_op,omitempty"`
}

type ExpressionType int

const (
	ExpressionTypeColumn ExpressionType = iota
	ExpressionTypeLiteral
	ExpressionTypeBinaryOp
)

func (t ExpressionType) String() string {
	switch t {
	case ExpressionTypeColumn:
		return "column"
	case ExpressionTypeLiteral:
		return "literal"
	case ExpressionTypeBinaryOp:
		return "binary_op"
	}
	return "unknown"
}

// Column references a field of the source schema by index.
// The name is informational.
type Column struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type Literal struct {
	Type   datatypes.Type `json:"type"`
	Null   bool           `json:"null,omitempty"`
	Int    int64          `json:"int,omitempty"`
	Float  float64        `json:"float,omitempty"`
	String string         `json:"string,omitempty"`
	Bool   bool           `json:"bool,omitempty"`
}

type BinaryOp struct {
	Op    Operator   `json:"op"`
	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewColumn(schema datatypes.Schema, name string) (Expression, error) {
	index := schema.FieldIndex(name)
	if index == -1 {
		return Expression{}, errors.Errorf("unknown column: %s", name)
	}
	return NewColumnIndex(index, name), nil
}

func NewColumnIndex(index int, name string) Expression {
	return Expression{
		ExpressionType: ExpressionTypeColumn,
		Column:         &Column{Index: index, Name: name},
	}
}

func NewInt(v int64) Expression {
	return Expression{ExpressionType: ExpressionTypeLiteral, Literal: &Literal{Type: datatypes.TypeInt64, Int: v}}
}

func NewFloat(v float64) Expression {
	return Expression{ExpressionType: ExpressionTypeLiteral, Literal: &Literal{Type: datatypes.TypeFloat64, Float: v}}
}

func NewString(v string) Expression {
	return Expression{ExpressionType: ExpressionTypeLiteral, Literal: &Literal{Type: datatypes.TypeString, String: v}}
}

func NewBool(v bool) Expression {
	return Expression{ExpressionType: ExpressionTypeLiteral, Literal: &Literal{Type: datatypes.TypeBoolean, Bool: v}}
}

// NewTimestamp takes milliseconds since the unix epoch.
func NewTimestamp(millis int64) Expression {
	return Expression{ExpressionType: ExpressionTypeLiteral, Literal: &Literal{Type: datatypes.TypeTimestamp, Int: millis}}
}

func NewBinaryOp(op Operator, left, right Expression) Expression {
	return Expression{
		ExpressionType: ExpressionTypeBinaryOp,
		BinaryOp: &BinaryOp{
			Op:    op,
			Left:  left,
			Right: right,
		},
	}
}

// NewAnd returns the conjunction of the arguments, which must not be empty.
func NewAnd(args ...Expression) Expression {
	out := args[0]
	for _, arg := range args[1:] {
		out = NewBinaryOp(OpAnd, out, arg)
	}
	return out
}

// SplitByAnd flattens a tree of conjunctions.
func (expr Expression) SplitByAnd() []Expression {
	if expr.ExpressionType != ExpressionTypeBinaryOp || expr.BinaryOp.Op != OpAnd {
		return []Expression{expr}
	}
	return append(expr.BinaryOp.Left.SplitByAnd(), expr.BinaryOp.Right.SplitByAnd()...)
}

// Field returns the output field of the expression evaluated against the given schema.
func (expr Expression) Field(schema datatypes.Schema) (datatypes.Field, error) {
	switch expr.ExpressionType {
	case ExpressionTypeColumn:
		if expr.Column.Index < 0 || expr.Column.Index >= len(schema.Fields) {
			return datatypes.Field{}, errors.Errorf("column %s index %d out of range for schema with %d fields", expr.Column.Name, expr.Column.Index, len(schema.Fields))
		}
		return schema.Fields[expr.Column.Index], nil
	case ExpressionTypeLiteral:
		return datatypes.Field{Name: expr.String(), Type: expr.Literal.Type, Nullable: expr.Literal.Null}, nil
	case ExpressionTypeBinaryOp:
		left, err := expr.BinaryOp.Left.Field(schema)
		if err != nil {
			return datatypes.Field{}, errors.Wrap(err, "couldn't type left operand")
		}
		right, err := expr.BinaryOp.Right.Field(schema)
		if err != nil {
			return datatypes.Field{}, errors.Wrap(err, "couldn't type right operand")
		}
		t, err := expr.BinaryOp.Op.resultType(left.Type, right.Type)
		if err != nil {
			return datatypes.Field{}, err
		}
		return datatypes.Field{
			Name:     expr.String(),
			Type:     t,
			Nullable: left.Nullable || right.Nullable,
		}, nil
	}
	panic("unexhaustive expression type match")
}

func (expr Expression) String() string {
	switch expr.ExpressionType {
	case ExpressionTypeColumn:
		return expr.Column.Name
	case ExpressionTypeLiteral:
		return expr.Literal.valueString()
	case ExpressionTypeBinaryOp:
		return fmt.Sprintf("(%s %s %s)", expr.BinaryOp.Left, expr.BinaryOp.Op, expr.BinaryOp.Right)
	}
	return "unknown"
}

func (l *Literal) valueString() string {
	if l.Null {
		return "NULL"
	}
	switch l.Type {
	case datatypes.TypeBoolean:
		return strconv.FormatBool(l.Bool)
	case datatypes.TypeInt64:
		return strconv.FormatInt(l.Int, 10)
	case datatypes.TypeFloat64:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case datatypes.TypeString:
		return strconv.Quote(l.String)
	case datatypes.TypeTimestamp:
		return fmt.Sprintf("timestamp(%d)", l.Int)
	}
	return "NULL"
}
