// Package output persists rendered rule lists to disk and, optionally, to
// S3-compatible object storage.
package output

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Artifact is one rendered file.
type Artifact struct {
	Name    string
	Content string
}

// Writer stores artifacts in a result directory.
type Writer struct {
	dir string
	log *slog.Logger
}

// NewWriter creates a Writer for dir. The directory is created on first write.
func NewWriter(dir string, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{dir: dir, log: log}
}

// Dir returns the result directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores every artifact and returns the written paths in order. Each
// file is replaced atomically.
func (w *Writer) Write(artifacts ...Artifact) ([]string, error) {
	if w.dir == "" {
		return nil, errors.New("output directory is empty")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		path := filepath.Join(w.dir, artifact.Name)
		if err := writeFileAtomic(path, []byte(artifact.Content)); err != nil {
			return paths, fmt.Errorf("write %s: %w", artifact.Name, err)
		}
		w.log.Debug("wrote artifact", "path", path, "bytes", len(artifact.Content))
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
