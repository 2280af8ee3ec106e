//go:build !windows
// +build !windows

package lock

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// File is an advisory flock(2) lock on a file, shared by every process on the host
// and by cluster nodes when the file lives on a shared file system honouring flock.
type File struct {
	path    string
	timeout time.Duration
}

func NewFile(path string, timeout time.Duration) *File {
	return &File{path: path, timeout: timeout}
}

func (l *File) Acquire(ctx context.Context) (Lease, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "open lock file %q", l.path)
	}
	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()
	err = poll(ctx, func() (bool, error) {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		switch err {
		case nil:
			return true, nil
		case unix.EWOULDBLOCK, unix.EINTR:
			return false, nil
		default:
			return false, errors.Wrapf(err, "flock %q", l.path)
		}
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileLease{f: f}, nil
}

type fileLease struct {
	once sync.Once
	f    *os.File
}

func (l *fileLease) Release() (err error) {
	l.once.Do(func() {
		if ferr := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); ferr != nil {
			err = errors.Wrap(ferr, "unlock")
		}
		if cerr := l.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return
}
