package baseline

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotInitialized is returned by Load when no baseline file exists yet.
var ErrNotInitialized = errors.New("baseline not initialized")

// FileStore persists the baseline as one principal name per line.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the baseline, skipping blank lines. A missing file is reported as
// ErrNotInitialized, an existing empty file is an empty set.
func (s *FileStore) Load() (Set, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNotInitialized, s.path)
		}
		return nil, fmt.Errorf("open baseline %s: %w", s.path, err)
	}
	defer f.Close()

	set := NewSet()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		set.Add(strings.TrimPrefix(scanner.Text(), "\ufeff"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", s.path, err)
	}

	return set, nil
}

// Save replaces the baseline with ids, one per line, deduplicated. The previous file
// stays in place until the new content is fully written.
func (s *FileStore) Save(ids []string) error {
	var b strings.Builder
	for _, id := range Dedupe(ids) {
		b.WriteString(id)
		b.WriteByte('\n')
	}

	if err := atomicWrite(s.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("save baseline %s: %w", s.path, err)
	}
	return nil
}

// atomicWrite writes data to a temporary file, fsyncs, then renames to target path.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pne-baseline-*")
	if err != nil {
		return fmt.Errorf("create tmp: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	if err := fsyncDir(dir); err != nil {
		return fmt.Errorf("fsync dir: %w", err)
	}

	success = true
	return nil
}

// fsyncDir makes the rename durable.
func fsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
