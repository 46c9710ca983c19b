package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"userdir/internal/directory"
)

// FileSource reads the user collection from a JSON file in the same shape
// the remote endpoint returns.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file the source reads from.
func (s *FileSource) Path() string { return s.path }

// FetchUsers reads and decodes the file.
func (s *FileSource) FetchUsers(ctx context.Context) ([]directory.RawUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetchFailed(err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fetchFailed(err)
	}

	var users []directory.RawUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fetchFailed(fmt.Errorf("decode %s: %w", s.path, err))
	}
	return users, nil
}
