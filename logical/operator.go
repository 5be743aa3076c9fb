package logical

import (
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/datatypes"
)

type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
	OpAdd
	OpSubtract
	OpMultiply
)

var operatorSymbols = map[Operator]string{
	OpEqual:        "=",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpAnd:          "AND",
	OpOr:           "OR",
	OpAdd:          "+",
	OpSubtract:     "-",
	OpMultiply:     "*",
}

func ParseOperator(symbol string) (Operator, error) {
	for op, s := range operatorSymbols {
		if s == symbol {
			return op, nil
		}
	}
	return 0, errors.Errorf("unknown operator: %s", symbol)
}

func (op Operator) String() string {
	if s, ok := operatorSymbols[op]; ok {
		return s
	}
	return "unknown"
}

func (op Operator) MarshalText() ([]byte, error) {
	if _, ok := operatorSymbols[op]; !ok {
		return nil, errors.Errorf("unknown operator: %d", int(op))
	}
	return []byte(op.String()), nil
}

func (op *Operator) UnmarshalText(text []byte) error {
	parsed, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// ComputeFunction is the name of the arrow compute function implementing the operator.
func (op Operator) ComputeFunction() string {
	switch op {
	case OpEqual:
		return "equal"
	case OpNotEqual:
		return "not_equal"
	case OpLess:
		return "less"
	case OpLessEqual:
		return "less_equal"
	case OpGreater:
		return "greater"
	case OpGreaterEqual:
		return "greater_equal"
	case OpAnd:
		return "and_kleene"
	case OpOr:
		return "or_kleene"
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	}
	panic("unexhaustive operator match")
}

func (op Operator) resultType(left, right datatypes.Type) (datatypes.Type, error) {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		if left != right {
			return 0, errors.Errorf("can't compare %s with %s", left, right)
		}
		return datatypes.TypeBoolean, nil
	case OpAnd, OpOr:
		if left != datatypes.TypeBoolean || right != datatypes.TypeBoolean {
			return 0, errors.Errorf("%s requires boolean operands, got %s and %s", op, left, right)
		}
		return datatypes.TypeBoolean, nil
	case OpAdd, OpSubtract, OpMultiply:
		if left != right || (left != datatypes.TypeInt64 && left != datatypes.TypeFloat64) {
			return 0, errors.Errorf("%s requires matching numeric operands, got %s and %s", op, left, right)
		}
		return left, nil
	}
	return 0, errors.Errorf("unknown operator: %d", int(op))
}
