package execution

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/pkg/errors"
)

// ProjectionStream evaluates one expression per output column.
type ProjectionStream struct {
	source      RecordStream
	schema      *arrow.Schema
	expressions []Expression
}

func NewProjectionStream(source RecordStream, schema *arrow.Schema, expressions []Expression) *ProjectionStream {
	return &ProjectionStream{
		source:      source,
		schema:      schema,
		expressions: expressions,
	}
}

func (s *ProjectionStream) Schema() *arrow.Schema {
	return s.schema
}

func (s *ProjectionStream) Next(ctx context.Context) (arrow.Record, error) {
	rec, err := s.source.Next(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]arrow.Array, len(s.expressions))
	for i, expr := range s.expressions {
		arr, err := expr.Evaluate(ctx, rec)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't evaluate projection expression with index %d", i)
		}
		columns[i] = arr
	}

	return array.NewRecord(s.schema, columns, rec.NumRows()), nil
}

func (s *ProjectionStream) Close() error {
	return s.source.Close()
}
