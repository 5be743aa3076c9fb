package outputs

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cube2222/octodist/execution"
	"github.com/cube2222/octodist/outputs/formats"
)

// OutputPrinter drains a record stream into a formatter.
type OutputPrinter struct {
	source execution.RecordStream
	format formats.Formatter
}

func NewOutputPrinter(source execution.RecordStream, format formats.Formatter) *OutputPrinter {
	return &OutputPrinter{
		source: source,
		format: format,
	}
}

func (o *OutputPrinter) Run(ctx context.Context) (outErr error) {
	defer func() {
		if err := o.source.Close(); err != nil && outErr == nil {
			outErr = errors.Wrap(err, "couldn't close source stream")
		}
	}()

	o.format.SetSchema(o.source.Schema())
	for {
		rec, err := o.source.Next(ctx)
		if err == execution.ErrEndOfStream {
			break
		} else if err != nil {
			return err
		}
		err = o.format.Write(rec)
		rec.Release()
		if err != nil {
			return errors.Wrap(err, "couldn't write record")
		}
	}

	if err := o.format.Close(); err != nil {
		return errors.Wrap(err, "couldn't close output formatter")
	}
	return nil
}
