package client

import (
	"github.com/apache/arrow/go/v13/arrow"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/execution"
)

type OutputType int

const (
	OutputTypeAffectedRows OutputType = iota
	OutputTypeRecordBatches
	OutputTypeStream
)

func (t OutputType) String() string {
	switch t {
	case OutputTypeAffectedRows:
		return "AffectedRows"
	case OutputTypeRecordBatches:
		return "RecordBatches"
	case OutputTypeStream:
		return "Stream"
	}
	return "unknown"
}

// headerValue is the name of the output type on the wire.
func (t OutputType) headerValue() string {
	switch t {
	case OutputTypeAffectedRows:
		return "affected_rows"
	case OutputTypeRecordBatches:
		return "record_batches"
	case OutputTypeStream:
		return "stream"
	}
	return "unknown"
}

func parseOutputType(value string) (OutputType, error) {
	for _, t := range []OutputType{OutputTypeAffectedRows, OutputTypeRecordBatches, OutputTypeStream} {
		if t.headerValue() == value {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown output type: '%s'", value)
}

// Output is the result of executing a plan on a datanode.
type Output struct {
	OutputType OutputType
	// Only the field matching the output type is set.
	AffectedRows  uint64
	RecordBatches *RecordBatches
	Stream        execution.RecordStream
}

// RecordBatches is a fully materialized result.
type RecordBatches struct {
	Schema  *arrow.Schema
	Batches []arrow.Record
}

func NewAffectedRowsOutput(rows uint64) *Output {
	return &Output{
		OutputType:   OutputTypeAffectedRows,
		AffectedRows: rows,
	}
}

func NewRecordBatchesOutput(schema *arrow.Schema, batches []arrow.Record) *Output {
	return &Output{
		OutputType: OutputTypeRecordBatches,
		RecordBatches: &RecordBatches{
			Schema:  schema,
			Batches: batches,
		},
	}
}

func NewStreamOutput(stream execution.RecordStream) *Output {
	return &Output{
		OutputType: OutputTypeStream,
		Stream:     stream,
	}
}
