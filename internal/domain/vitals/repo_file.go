package vitals

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type visitFileRepo struct {
	path string
}

// NewVisitFileRepo returns a repository over the vitals file at path.
func NewVisitFileRepo(path string) VisitFileRepository {
	return &visitFileRepo{path: path}
}

func (r *visitFileRepo) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return f, nil
}

func (r *visitFileRepo) Append(_ context.Context, line string) error {
	sep, err := r.needsSeparator()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", r.path, err)
	}
	if sep {
		line = "\n" + line
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append to %s: %w", r.path, err)
	}
	return f.Close()
}

// needsSeparator reports whether the file is non-empty and lacks a trailing
// newline, so an appended line would otherwise join the last record.
func (r *visitFileRepo) needsSeparator() (bool, error) {
	f, err := os.Open(r.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", r.path, err)
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, fmt.Errorf("read %s: %w", r.path, err)
	}
	return last[0] != '\n', nil
}

func (r *visitFileRepo) Rewrite(_ context.Context, store *VisitStore) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	w := bufio.NewWriter(tmp)
	for _, line := range store.Lines() {
		if _, err := w.WriteString(line + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("write %s: %w", tmpName, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}
