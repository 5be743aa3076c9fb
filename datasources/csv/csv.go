package csv

import (
	"bytes"
	"unicode/utf8"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/csv"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/datasources"
	"github.com/cube2222/octodist/execution"
)

type Options struct {
	// Delimiter defaults to a comma.
	Delimiter string `yaml:"delimiter,omitempty"`
	// HasHeader skips the first line of each file.
	HasHeader bool `yaml:"hasHeader"`
}

func (o Options) comma() (rune, error) {
	if o.Delimiter == "" {
		return ',', nil
	}
	if utf8.RuneCountInString(o.Delimiter) != 1 {
		return 0, errors.Errorf("csv delimiter must be a single character, got '%s'", o.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(o.Delimiter)
	return r, nil
}

// Open reads the csv file contents as records with the given schema.
// Empty fields are read as nulls.
func Open(allocator memory.Allocator, data []byte, schema *arrow.Schema, options Options) (execution.RecordStream, error) {
	comma, err := options.comma()
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(
		bytes.NewReader(data),
		schema,
		csv.WithAllocator(allocator),
		csv.WithComma(comma),
		csv.WithHeader(options.HasHeader),
		csv.WithChunk(datasources.BatchSize),
		csv.WithNullReader(true, ""),
	)
	return datasources.NewReaderStream(schema, reader), nil
}
