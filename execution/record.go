package execution

import (
	"context"
	"io"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"
)

var ErrEndOfStream = errors.New("end of stream")

// RecordStream is a lazy, single-pass sequence of record batches sharing one schema.
// Next returns ErrEndOfStream once the stream is drained.
type RecordStream interface {
	Schema() *arrow.Schema
	Next(ctx context.Context) (arrow.Record, error)
	io.Closer
}

// ReadAll drains the stream and closes it.
func ReadAll(ctx context.Context, stream RecordStream) (out []arrow.Record, outErr error) {
	defer func() {
		if err := stream.Close(); err != nil && outErr == nil {
			outErr = errors.Wrap(err, "couldn't close record stream")
		}
	}()

	var rec arrow.Record
	var err error
	for rec, err = stream.Next(ctx); err == nil; rec, err = stream.Next(ctx) {
		out = append(out, rec)
	}
	if err != ErrEndOfStream {
		return out, err
	}
	return out, nil
}

// NumRows sums the row counts of the given records.
func NumRows(records []arrow.Record) int64 {
	var out int64
	for _, rec := range records {
		out += rec.NumRows()
	}
	return out
}
