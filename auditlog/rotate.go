package auditlog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"
)

// DefaultMaxSize is the size at which the audit log is rotated.
const DefaultMaxSize int64 = 10 * 1024 * 1024

// RotationSuffixLayout is appended to the log path when a file is rotated out.
const RotationSuffixLayout = "20060102150405"

// FileSystem is the file access RotatingFile needs.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	Rename(oldpath, newpath string) error
	OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error)
}

type osFS struct{}

func (osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (osFS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (osFS) OpenFile(name string, flag int, perm fs.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(name, flag, perm)
}

// RotatingFile appends each write to path, first renaming the file to
// path+timestamp once it has reached maxSize. It implements zapcore.WriteSyncer.
type RotatingFile struct {
	path    string
	maxSize int64
	now     func() time.Time
	fs      FileSystem
	mu      sync.Mutex
}

func NewRotatingFile(path string, maxSize int64, now func() time.Time, fsys FileSystem) *RotatingFile {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if now == nil {
		now = time.Now
	}
	if fsys == nil {
		fsys = osFS{}
	}
	return &RotatingFile{path: path, maxSize: maxSize, now: now, fs: fsys}
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.rotateIfNeeded(); err != nil {
		return 0, err
	}

	f, err := r.fs.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open audit log %s: %w", r.path, err)
	}

	n, err := f.Write(p)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("append audit log %s: %w", r.path, err)
	}
	return n, nil
}

// Sync is a no-op; the file is closed after every write.
func (r *RotatingFile) Sync() error {
	return nil
}

func (r *RotatingFile) rotateIfNeeded() error {
	info, err := r.fs.Stat(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat audit log %s: %w", r.path, err)
	}

	if info.Size() < r.maxSize {
		return nil
	}

	rotated, err := r.rotatedName()
	if err != nil {
		return err
	}
	if err := r.fs.Rename(r.path, rotated); err != nil {
		return fmt.Errorf("rotate audit log %s: %w", r.path, err)
	}
	return nil
}

// rotatedName returns path+timestamp, adding a ".N" counter when an earlier
// rotation in the same second already took that name.
func (r *RotatingFile) rotatedName() (string, error) {
	base := r.path + r.now().Format(RotationSuffixLayout)
	name := base
	for i := 1; ; i++ {
		_, err := r.fs.Stat(name)
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat rotated audit log %s: %w", name, err)
		}
		name = fmt.Sprintf("%s.%d", base, i)
	}
}
