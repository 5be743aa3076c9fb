package execution

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"
)

// StreamOpener lazily creates a source stream.
type StreamOpener func(ctx context.Context) (RecordStream, error)

// ConcatStream reads its sources one after another, opening each only once the previous one is drained.
type ConcatStream struct {
	schema  *arrow.Schema
	sources []StreamOpener

	current      RecordStream
	currentIndex int
}

func NewConcatStream(schema *arrow.Schema, sources ...StreamOpener) *ConcatStream {
	return &ConcatStream{
		schema:  schema,
		sources: sources,
	}
}

func (s *ConcatStream) Schema() *arrow.Schema {
	return s.schema
}

func (s *ConcatStream) Next(ctx context.Context) (arrow.Record, error) {
	for {
		if s.current == nil {
			if s.currentIndex >= len(s.sources) {
				return nil, ErrEndOfStream
			}
			stream, err := s.sources[s.currentIndex](ctx)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't open source stream with index %d", s.currentIndex)
			}
			s.current = stream
		}

		rec, err := s.current.Next(ctx)
		if err == ErrEndOfStream {
			if err := s.current.Close(); err != nil {
				return nil, errors.Wrapf(err, "couldn't close source stream with index %d", s.currentIndex)
			}
			s.current = nil
			s.currentIndex++
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "couldn't get next record from source stream with index %d", s.currentIndex)
		}
		return rec, nil
	}
}

func (s *ConcatStream) Close() error {
	s.currentIndex = len(s.sources)
	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	if err != nil {
		return errors.Wrap(err, "couldn't close current source stream")
	}
	return nil
}
