package physical

import (
	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/scalar"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/datatypes"
	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/logical"
)

func CompileExpression(expr logical.Expression) (execution.Expression, error) {
	switch expr.ExpressionType {
	case logical.ExpressionTypeColumn:
		return execution.NewRecordVariable(expr.Column.Index), nil
	case logical.ExpressionTypeLiteral:
		value, err := literalScalar(expr.Literal)
		if err != nil {
			return nil, err
		}
		return execution.NewConstant(value), nil
	case logical.ExpressionTypeBinaryOp:
		left, err := CompileExpression(expr.BinaryOp.Left)
		if err != nil {
			return nil, errors.Wrap(err, "couldn't compile left operand")
		}
		right, err := CompileExpression(expr.BinaryOp.Right)
		if err != nil {
			return nil, errors.Wrap(err, "couldn't compile right operand")
		}
		return execution.NewFunctionCall(expr.BinaryOp.Op.ComputeFunction(), []execution.Expression{left, right}), nil
	}
	return nil, errors.Errorf("unknown expression type: %d", int(expr.ExpressionType))
}

func literalScalar(l *logical.Literal) (scalar.Scalar, error) {
	if l.Null {
		dt, err := datatypes.ToArrowType(l.Type)
		if err != nil {
			return nil, err
		}
		return scalar.MakeNullScalar(dt), nil
	}
	switch l.Type {
	case datatypes.TypeBoolean:
		return scalar.NewBooleanScalar(l.Bool), nil
	case datatypes.TypeInt64:
		return scalar.NewInt64Scalar(l.Int), nil
	case datatypes.TypeFloat64:
		return scalar.NewFloat64Scalar(l.Float), nil
	case datatypes.TypeString:
		return scalar.NewStringScalar(l.String), nil
	case datatypes.TypeTimestamp:
		return scalar.NewTimestampScalar(arrow.Timestamp(l.Int), arrow.FixedWidthTypes.Timestamp_ms), nil
	}
	return nil, errors.Errorf("unsupported literal type: %s", l.Type)
}
