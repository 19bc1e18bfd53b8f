package lspbin

import (
	"fmt"
)

// ResolutionError is returned when a language server binary can't be resolved.
// The cause is kept so it can be inspected with errors.Is and errors.As against the
// error kinds of the release and binary packages.
type ResolutionError struct {
	Repository string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("unable to resolve language server from %s: %s", e.Repository, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
