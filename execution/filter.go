package execution

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/compute"
	"github.com/pkg/errors"
)

// FilterStream uses the arrow selection function, dropping rows for which the predicate is null.
// Batches which end up empty are skipped.
type FilterStream struct {
	source    RecordStream
	predicate Expression
}

func NewFilterStream(source RecordStream, predicate Expression) *FilterStream {
	return &FilterStream{
		source:    source,
		predicate: predicate,
	}
}

func (s *FilterStream) Schema() *arrow.Schema {
	return s.source.Schema()
}

func (s *FilterStream) Next(ctx context.Context) (arrow.Record, error) {
	for {
		rec, err := s.source.Next(ctx)
		if err != nil {
			return nil, err
		}

		selection, err := s.predicate.Evaluate(ctx, rec)
		if err != nil {
			return nil, errors.Wrap(err, "couldn't evaluate filter predicate")
		}
		if selection.DataType().ID() != arrow.BOOL {
			return nil, errors.Errorf("filter predicate must be boolean, got %s", selection.DataType())
		}

		out, err := compute.FilterRecordBatch(ctx, rec, selection, &compute.FilterOptions{
			NullSelection: compute.SelectionDropNulls,
		})
		if err != nil {
			return nil, errors.Wrap(err, "couldn't filter record batch")
		}
		if out.NumRows() == 0 {
			out.Release()
			continue
		}
		return out, nil
	}
}

func (s *FilterStream) Close() error {
	return s.source.Close()
}
