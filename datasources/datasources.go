// Package datasources holds the readers turning table files into record streams.
package datasources

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/execution"
)

// BatchSize is the maximum number of rows in a single record read from a file.
const BatchSize = 8192

// Format names a supported table file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

func (f Format) Validate() error {
	switch f {
	case FormatCSV, FormatJSON, FormatParquet:
		return nil
	}
	return errors.Errorf("unknown file format: '%s'", f)
}

// RecordReader is the iterator interface shared by arrow's file readers.
type RecordReader interface {
	Next() bool
	Record() arrow.Record
	Release()
}

// ReaderStream adapts a RecordReader to a RecordStream, conforming each record to the given schema.
type ReaderStream struct {
	schema *arrow.Schema
	reader RecordReader
	closed bool
}

func NewReaderStream(schema *arrow.Schema, reader RecordReader) *ReaderStream {
	return &ReaderStream{
		schema: schema,
		reader: reader,
	}
}

func (s *ReaderStream) Schema() *arrow.Schema {
	return s.schema
}

func (s *ReaderStream) Next(ctx context.Context) (arrow.Record, error) {
	if s.closed {
		return nil, execution.ErrEndOfStream
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for s.reader.Next() {
		rec := s.reader.Record()
		if rec.NumRows() == 0 {
			continue
		}
		return ConformRecord(rec, s.schema)
	}
	if withErr, ok := s.reader.(interface{ Err() error }); ok {
		if err := withErr.Err(); err != nil {
			return nil, errors.Wrap(err, "couldn't read record")
		}
	}
	return nil, execution.ErrEndOfStream
}

func (s *ReaderStream) Close() error {
	if !s.closed {
		s.closed = true
		s.reader.Release()
	}
	return nil
}

// ConformRecord returns a new record with the given schema and the columns of rec.
// Column types must match, timestamps may differ in time zone.
func ConformRecord(rec arrow.Record, schema *arrow.Schema) (arrow.Record, error) {
	if int(rec.NumCols()) != schema.NumFields() {
		return nil, errors.Errorf("record has %d columns, schema has %d", rec.NumCols(), schema.NumFields())
	}
	cols := make([]arrow.Array, rec.NumCols())
	defer func() {
		for _, col := range cols {
			if col != nil {
				col.Release()
			}
		}
	}()
	for i := range cols {
		col, err := ConformColumn(rec.Column(i), schema.Field(i).Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %s", schema.Field(i).Name)
		}
		cols[i] = col
	}
	return array.NewRecord(schema, cols, rec.NumRows()), nil
}

// ConformColumn returns arr typed as target. The caller owns the returned array.
func ConformColumn(arr arrow.Array, target arrow.DataType) (arrow.Array, error) {
	if arrow.TypeEqual(arr.DataType(), target) {
		arr.Retain()
		return arr, nil
	}
	from, fromOk := arr.DataType().(*arrow.TimestampType)
	to, toOk := target.(*arrow.TimestampType)
	if fromOk && toOk && from.Unit == to.Unit {
		data := arr.Data()
		reinterpreted := array.NewData(target, data.Len(), data.Buffers(), nil, data.NullN(), data.Offset())
		defer reinterpreted.Release()
		return array.MakeFromData(reinterpreted), nil
	}
	return nil, errors.Errorf("expected type %s, got %s", target, arr.DataType())
}
