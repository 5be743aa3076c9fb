package execution

import (
	"context"

	"github.com/apache/arrow/go/v13/arrow"
)

type InMemoryStream struct {
	schema *arrow.Schema
	data   []arrow.Record
	index  int
}

func NewInMemoryStream(schema *arrow.Schema, data []arrow.Record) *InMemoryStream {
	return &InMemoryStream{
		schema: schema,
		data:   data,
		index:  0,
	}
}

func (ims *InMemoryStream) Schema() *arrow.Schema {
	return ims.schema
}

func (ims *InMemoryStream) Close() error {
	return nil
}

func (ims *InMemoryStream) Next(ctx context.Context) (arrow.Record, error) {
	if ims.index >= len(ims.data) {
		return nil, ErrEndOfStream
	}

	recordToReturn := ims.data[ims.index]
	ims.index++

	return recordToReturn, nil
}
