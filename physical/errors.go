package physical

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cube2222/octodist/meta"
)

// ErrPlanningInvariantViolation means the planner produced or requested something impossible.
// It's always a bug, never a data or network problem.
var ErrPlanningInvariantViolation = errors.New("planning invariant violation")

// UnexpectedOutputKindError is returned when a datanode answers a query with the wrong kind of output.
type UnexpectedOutputKindError struct {
	Expected string
	Got      string
}

func (e *UnexpectedOutputKindError) Error() string {
	return fmt.Sprintf("unexpected remote output kind, expected: %s, got: %s", e.Expected, e.Got)
}

// RemoteRequestError wraps a failure which happened while talking to a peer.
type RemoteRequestError struct {
	Peer meta.Peer
	Err  error
}

func (e *RemoteRequestError) Error() string {
	return fmt.Sprintf("remote request to %s failed: %s", e.Peer, e.Err)
}

func (e *RemoteRequestError) Unwrap() error {
	return e.Err
}

// SchemaConversionError means a plan's schema can't be represented by the engine.
type SchemaConversionError struct {
	Err error
}

func (e *SchemaConversionError) Error() string {
	return fmt.Sprintf("couldn't convert schema: %s", e.Err)
}

func (e *SchemaConversionError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError is returned when a peer sends batches with a different shape than planned.
type SchemaMismatchError struct {
	Peer     meta.Peer
	Expected string
	Got      string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s returned a batch with schema %s, expected %s", e.Peer, e.Got, e.Expected)
}
