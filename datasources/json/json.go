package json

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/valyala/fastjson"

	"github.com/cube2222/octodist/datasources"
	"github.com/cube2222/octodist/execution"
)

type ValueReaderFunc func(value *fastjson.Value) error

// Stream reads newline delimited json objects, one row per line.
// Fields are looked up by name, missing fields are null.
type Stream struct {
	schema  *arrow.Schema
	scanner *bufio.Scanner
	parser  fastjson.Parser

	recordBuilder *array.RecordBuilder
	readRecord    ValueReaderFunc
	line          int
	done          bool
}

func Open(allocator memory.Allocator, data []byte, schema *arrow.Schema) (execution.RecordStream, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(nil, 1024*1024*8)

	recordBuilder := array.NewRecordBuilder(allocator, schema)
	readerFunc, err := recordReader(schema, recordBuilder)
	if err != nil {
		recordBuilder.Release()
		return nil, fmt.Errorf("couldn't construct record reader function: %w", err)
	}

	return &Stream{
		schema:        schema,
		scanner:       sc,
		recordBuilder: recordBuilder,
		readRecord:    readerFunc,
	}, nil
}

func (s *Stream) Schema() *arrow.Schema {
	return s.schema
}

func (s *Stream) Next(ctx context.Context) (arrow.Record, error) {
	if s.done {
		return nil, execution.ErrEndOfStream
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	count := 0
	s.recordBuilder.Reserve(datasources.BatchSize)
	for count < datasources.BatchSize && s.scanner.Scan() {
		s.line++
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		value, err := s.parser.ParseBytes(line)
		if err != nil {
			return nil, fmt.Errorf("couldn't parse json on line %d: %w", s.line, err)
		}
		if err := s.readRecord(value); err != nil {
			return nil, fmt.Errorf("couldn't read record on line %d: %w", s.line, err)
		}
		count++
	}
	if count < datasources.BatchSize {
		if err := s.scanner.Err(); err != nil {
			return nil, fmt.Errorf("couldn't read line: %w", err)
		}
		s.done = true
	}
	if count == 0 {
		return nil, execution.ErrEndOfStream
	}

	return s.recordBuilder.NewRecord(), nil
}

func (s *Stream) Close() error {
	s.done = true
	if s.recordBuilder != nil {
		s.recordBuilder.Release()
		s.recordBuilder = nil
	}
	return nil
}

func recordReader(schema *arrow.Schema, recordBuilder *array.RecordBuilder) (ValueReaderFunc, error) {
	fields := schema.Fields()
	readers := make([]ValueReaderFunc, len(schema.Fields()))
	for i, field := range fields {
		var err error
		readers[i], err = valueReader(field.Type, recordBuilder.Field(i))
		if err != nil {
			return nil, fmt.Errorf("couldn't create value reader for field %v: %w", field.Name, err)
		}
	}

	return func(value *fastjson.Value) error {
		obj, err := value.Object()
		if err != nil {
			return fmt.Errorf("expected object: %w", err)
		}
		for i, field := range fields {
			if err := readers[i](obj.Get(field.Name)); err != nil {
				return fmt.Errorf("couldn't read field %v: %w", field.Name, err)
			}
		}
		return nil
	}, nil
}

func valueReader(dt arrow.DataType, builder array.Builder) (ValueReaderFunc, error) {
	switch dt.ID() {
	case arrow.NULL:
		return func(value *fastjson.Value) error {
			builder.AppendNull()
			return nil
		}, nil
	case arrow.BOOL:
		return nullableReader(boolReader, builder), nil
	case arrow.INT64:
		return nullableReader(intReader, builder), nil
	case arrow.FLOAT64:
		return nullableReader(floatReader, builder), nil
	case arrow.STRING:
		return nullableReader(stringReader, builder), nil
	case arrow.TIMESTAMP:
		return nullableReader(timestampReader, builder), nil
	default:
		return nil, fmt.Errorf("unsupported type: %v", dt)
	}
}

func boolReader(builder array.Builder) ValueReaderFunc {
	boolBuilder := builder.(*array.BooleanBuilder)
	return func(value *fastjson.Value) error {
		v, err := value.Bool()
		if err != nil {
			return fmt.Errorf("couldn't read bool: %w", err)
		}
		boolBuilder.Append(v)
		return nil
	}
}

func intReader(builder array.Builder) ValueReaderFunc {
	intBuilder := builder.(*array.Int64Builder)
	return func(value *fastjson.Value) error {
		v, err := value.Int64()
		if err != nil {
			return fmt.Errorf("couldn't read int: %w", err)
		}
		intBuilder.Append(v)
		return nil
	}
}

func floatReader(builder array.Builder) ValueReaderFunc {
	floatBuilder := builder.(*array.Float64Builder)
	return func(value *fastjson.Value) error {
		v, err := value.Float64()
		if err != nil {
			return fmt.Errorf("couldn't read float: %w", err)
		}
		floatBuilder.Append(v)
		return nil
	}
}

func stringReader(builder array.Builder) ValueReaderFunc {
	stringBuilder := builder.(*array.StringBuilder)
	return func(value *fastjson.Value) error {
		v, err := value.StringBytes()
		if err != nil {
			return fmt.Errorf("couldn't read string: %w", err)
		}
		stringBuilder.BinaryBuilder.Append(v)
		return nil
	}
}

// Timestamps are either milliseconds since the epoch or RFC 3339 strings.
func timestampReader(builder array.Builder) ValueReaderFunc {
	timestampBuilder := builder.(*array.TimestampBuilder)
	return func(value *fastjson.Value) error {
		switch value.Type() {
		case fastjson.TypeNumber:
			v, err := value.Int64()
			if err != nil {
				return fmt.Errorf("couldn't read timestamp: %w", err)
			}
			timestampBuilder.Append(arrow.Timestamp(v))
		case fastjson.TypeString:
			t, err := time.Parse(time.RFC3339Nano, string(value.GetStringBytes()))
			if err != nil {
				return fmt.Errorf("couldn't parse timestamp: %w", err)
			}
			timestampBuilder.Append(arrow.Timestamp(t.UnixMilli()))
		default:
			return fmt.Errorf("couldn't read timestamp from json %s", value.Type())
		}
		return nil
	}
}

func nullableReader(readerFuncMaker func(builder array.Builder) ValueReaderFunc, builder array.Builder) ValueReaderFunc {
	reader := readerFuncMaker(builder)
	return func(value *fastjson.Value) error {
		if value == nil || value.Type() == fastjson.TypeNull {
			builder.AppendNull()
			return nil
		}
		return reader(value)
	}
}
