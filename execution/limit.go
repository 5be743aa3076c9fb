package execution

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
)

// LimitStream stops reading its source once limit rows have been returned.
type LimitStream struct {
	source    RecordStream
	remaining int64
}

func NewLimitStream(source RecordStream, limit int64) *LimitStream {
	return &LimitStream{
		source:    source,
		remaining: limit,
	}
}

func (s *LimitStream) Schema() *arrow.Schema {
	return s.source.Schema()
}

func (s *LimitStream) Next(ctx context.Context) (arrow.Record, error) {
	if s.remaining <= 0 {
		return nil, ErrEndOfStream
	}
	rec, err := s.source.Next(ctx)
	if err != nil {
		return nil, err
	}
	if rec.NumRows() <= s.remaining {
		s.remaining -= rec.NumRows()
		return rec, nil
	}

	out := rec.NewSlice(0, s.remaining)
	s.remaining = 0
	return out, nil
}

func (s *LimitStream) Close() error {
	return s.source.Close()
}
