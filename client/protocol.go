package client

import (
	"strconv"

	"github.com/pkg/errors"
	"google.golang.org/grpc/metadata"
)

// The output type is sent in the response headers, before any data.
const (
	outputTypeHeader   = "x-octodist-output"
	affectedRowsHeader = "x-octodist-affected-rows"
)

// OutputHeader returns the response headers announcing the given output.
func OutputHeader(t OutputType, affectedRows uint64) metadata.MD {
	md := metadata.Pairs(outputTypeHeader, t.headerValue())
	if t == OutputTypeAffectedRows {
		md.Set(affectedRowsHeader, strconv.FormatUint(affectedRows, 10))
	}
	return md
}

func parseOutputHeader(md metadata.MD) (OutputType, uint64, bool, error) {
	values := md.Get(outputTypeHeader)
	if len(values) == 0 {
		return 0, 0, false, nil
	}
	t, err := parseOutputType(values[0])
	if err != nil {
		return 0, 0, true, err
	}
	if t != OutputTypeAffectedRows {
		return t, 0, true, nil
	}

	rowValues := md.Get(affectedRowsHeader)
	if len(rowValues) == 0 {
		return 0, 0, true, errors.New("missing affected rows header")
	}
	rows, err := strconv.ParseUint(rowValues[0], 10, 64)
	if err != nil {
		return 0, 0, true, errors.Wrap(err, "couldn't parse affected rows header")
	}
	return t, rows, true, nil
}
