package execution

import (
	"fmt"

	"github.com/pkg/errors"
)

// ExternalError marks failures which originate outside of the local engine,
// like a misbehaving or unreachable peer.
type ExternalError struct {
	Err error
}

func NewExternalError(err error) error {
	return &ExternalError{Err: err}
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("external error: %s", e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

func IsExternal(err error) bool {
	var ext *ExternalError
	return errors.As(err, &ext)
}
