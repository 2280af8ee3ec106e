package lock

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// File locks are not supported on windows.
type File struct{}

func NewFile(path string, timeout time.Duration) *File {
	return &File{}
}

func (l *File) Acquire(ctx context.Context) (Lease, error) {
	return nil, errors.New("file lock backend is not supported on windows")
}
