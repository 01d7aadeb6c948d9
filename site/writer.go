package site

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Writer saves the generated pages to disk
type Writer struct {
	// DryRun logs what would be written without touching the filesystem
	DryRun bool

	PermFile os.FileMode
	PermDir  os.FileMode

	log *zap.SugaredLogger
}

// NewWriter returns a writer logging to log, which may be nil
func NewWriter(dryRun bool, log *zap.SugaredLogger) *Writer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Writer{
		DryRun:   dryRun,
		PermFile: 0o644,
		PermDir:  0o755,
		log:      log,
	}
}

// WriteFile replaces the contents of dest with data.
// Readers of dest see either the old file or the new one, never a partial write.
func (w *Writer) WriteFile(dest string, data []byte) error {
	if w.DryRun {
		w.log.Infow("dry run, not writing", "file", dest, "bytes", len(data))
		return nil
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, w.PermDir); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".htmlizer-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(w.PermFile); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	w.log.Debugw("file written", "file", dest, "bytes", len(data))
	return nil
}

// WriteAll writes every output, stopping at the first error
func (w *Writer) WriteAll(outputs []Output) error {
	for _, out := range outputs {
		if err := w.WriteFile(out.Path, out.Data); err != nil {
			return err
		}
	}
	return nil
}
