package auditlog_test

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"f0oster/pneaudit/auditlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFS is an in-memory FileSystem.
type memFS struct {
	files     map[string]*bytes.Buffer
	renameErr error
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string]*bytes.Buffer)}
}

type memInfo struct {
	name string
	size int64
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return 0o644 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }

func (m *memFS) Stat(name string) (fs.FileInfo, error) {
	b, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return memInfo{name: name, size: int64(b.Len())}, nil
}

func (m *memFS) Rename(oldpath, newpath string) error {
	if m.renameErr != nil {
		return m.renameErr
	}
	b, ok := m.files[oldpath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	m.files[newpath] = b
	delete(m.files, oldpath)
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (m *memFS) OpenFile(name string, flag int, _ fs.FileMode) (io.WriteCloser, error) {
	b, ok := m.files[name]
	if !ok {
		if flag&os.O_CREATE == 0 {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		b = &bytes.Buffer{}
		m.files[name] = b
	}
	return nopCloser{b}, nil
}

func TestRotatingFile_BelowThresholdAppends(t *testing.T) {
	mfs := newMemFS()
	rf := auditlog.NewRotatingFile("audit.log", 10, fixedClock, mfs)

	_, err := rf.Write([]byte("12345"))
	require.NoError(t, err)
	_, err = rf.Write([]byte("6789"))
	require.NoError(t, err)

	require.Len(t, mfs.files, 1)
	assert.Equal(t, "123456789", mfs.files["audit.log"].String())
}

func TestRotatingFile_AtThresholdRotatesBeforeAppend(t *testing.T) {
	mfs := newMemFS()
	mfs.files["audit.log"] = bytes.NewBufferString("0123456789")
	rf := auditlog.NewRotatingFile("audit.log", 10, fixedClock, mfs)

	_, err := rf.Write([]byte("fresh"))
	require.NoError(t, err)

	rotated := "audit.log" + fixedTime.Format(auditlog.RotationSuffixLayout)
	require.Contains(t, mfs.files, rotated)
	assert.Equal(t, "0123456789", mfs.files[rotated].String())
	assert.Equal(t, "fresh", mfs.files["audit.log"].String())
	assert.Equal(t, "audit.log20261014093015", rotated)
}

func TestRotatingFile_SameSecondRotationsKeepEveryFile(t *testing.T) {
	mfs := newMemFS()
	mfs.files["audit.log"] = bytes.NewBufferString("first-full")
	rf := auditlog.NewRotatingFile("audit.log", 10, fixedClock, mfs)

	_, err := rf.Write([]byte("second-ful"))
	require.NoError(t, err)
	_, err = rf.Write([]byte("third"))
	require.NoError(t, err)

	rotated := "audit.log" + fixedTime.Format(auditlog.RotationSuffixLayout)
	require.Contains(t, mfs.files, rotated)
	require.Contains(t, mfs.files, rotated+".1")
	assert.Equal(t, "first-full", mfs.files[rotated].String())
	assert.Equal(t, "second-ful", mfs.files[rotated+".1"].String())
	assert.Equal(t, "third", mfs.files["audit.log"].String())
}

func TestRotatingFile_RenameFailure(t *testing.T) {
	mfs := newMemFS()
	mfs.files["audit.log"] = bytes.NewBufferString("0123456789")
	mfs.renameErr = errors.New("sharing violation")
	rf := auditlog.NewRotatingFile("audit.log", 10, fixedClock, mfs)

	_, err := rf.Write([]byte("x"))
	require.Error(t, err)
	assert.Equal(t, "0123456789", mfs.files["audit.log"].String())
}

func TestRotatingFile_DefaultMaxSize(t *testing.T) {
	mfs := newMemFS()
	mfs.files["audit.log"] = bytes.NewBuffer(make([]byte, auditlog.DefaultMaxSize-1))
	rf := auditlog.NewRotatingFile("audit.log", 0, fixedClock, mfs)

	_, err := rf.Write([]byte("a"))
	require.NoError(t, err)
	assert.Len(t, mfs.files, 1)

	_, err = rf.Write([]byte("b"))
	require.NoError(t, err)
	assert.Len(t, mfs.files, 2)
	assert.Equal(t, "b", mfs.files["audit.log"].String())
}

func TestLogger_RotatesTenMiBFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pne_audit.log")

	prior := bytes.Repeat([]byte("x"), int(auditlog.DefaultMaxSize))
	require.NoError(t, os.WriteFile(path, prior, 0o644))

	logger, err := auditlog.New(auditlog.Config{Path: path, Host: "H", Clock: fixedClock})
	require.NoError(t, err)
	require.NoError(t, logger.Log(auditlog.Info, "after rotation"))

	rotatedPath := path + fixedTime.Format(auditlog.RotationSuffixLayout)
	rotated, err := os.ReadFile(rotatedPath)
	require.NoError(t, err)
	assert.Equal(t, prior, rotated)

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14 09:30:15 [H] INFO: after rotation\n", string(current))
}
