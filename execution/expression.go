package execution

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/compute"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/arrow/scalar"
	"github.com/pkg/errors"
)

type Expression interface {
	Evaluate(ctx context.Context, record arrow.Record) (arrow.Array, error)
}

type RecordVariable struct {
	index int
}

func NewRecordVariable(index int) *RecordVariable {
	return &RecordVariable{
		index: index,
	}
}

func (r *RecordVariable) Evaluate(ctx context.Context, record arrow.Record) (arrow.Array, error) {
	if r.index >= int(record.NumCols()) {
		return nil, errors.Errorf("column index %d out of range for record with %d columns", r.index, record.NumCols())
	}
	return record.Column(r.index), nil
}

type Constant struct {
	Value scalar.Scalar
}

func NewConstant(value scalar.Scalar) *Constant {
	return &Constant{
		Value: value,
	}
}

func (c *Constant) Evaluate(ctx context.Context, record arrow.Record) (arrow.Array, error) {
	return scalar.MakeArrayFromScalar(c.Value, int(record.NumRows()), memory.DefaultAllocator)
}

// FunctionCall evaluates a function from the arrow compute registry, like "add" or "less_equal".
type FunctionCall struct {
	name string
	args []Expression
}

func NewFunctionCall(name string, args []Expression) *FunctionCall {
	return &FunctionCall{
		name: name,
		args: args,
	}
}

func (f *FunctionCall) Evaluate(ctx context.Context, record arrow.Record) (arrow.Array, error) {
	args := make([]compute.Datum, len(f.args))
	for i, arg := range f.args {
		arr, err := arg.Evaluate(ctx, record)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't evaluate argument %d", i)
		}
		args[i] = compute.NewDatum(arr)
	}

	out, err := compute.CallFunction(ctx, f.name, nil, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't call %s", f.name)
	}
	arrayDatum, ok := out.(*compute.ArrayDatum)
	if !ok {
		return nil, errors.Errorf("function %s returned non-array datum: %s", f.name, out.Kind())
	}
	return arrayDatum.MakeArray(), nil
}
