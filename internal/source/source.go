// Package source provides the collaborators that supply raw user records to
// the directory: a remote JSON endpoint and a local JSON file.
package source

import (
	"errors"
	"fmt"

	"userdir/internal/directory"
)

// DefaultEndpoint is the public mock API the directory reads from by default.
const DefaultEndpoint = "https://jsonplaceholder.typicode.com/users"

// ErrFetchFailed is wrapped by every error a source returns. Callers do not
// distinguish transport, status and decoding failures.
var ErrFetchFailed = errors.New("failed to fetch users")

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: HTTP %d", ErrFetchFailed, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrFetchFailed }

// fetchFailed wraps err so that both ErrFetchFailed and err match errors.Is.
func fetchFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrFetchFailed, err)
}

var (
	_ directory.Source = (*HTTPSource)(nil)
	_ directory.Source = (*FileSource)(nil)
)
