// Package checkpoint persists the parameters of an interrupted search.
package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/verte-zerg/zipforce/internal/model"
)

// ErrRestoreUnsupported is returned by Restore until resuming is implemented.
var ErrRestoreUnsupported = errors.New("checkpoint restore is not supported")

// FileName returns the checkpoint name for archivePath on the day of now.
func FileName(archivePath string, now time.Time) string {
	return filepath.Base(archivePath) + "_" + now.Format("2006-01-02")
}

// Save writes cp into dir and returns the file path. An existing checkpoint of
// the same name is never overwritten.
func Save(dir string, cp model.Checkpoint, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName(cp.ArchivePath, now))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create checkpoint: %w", err)
	}
	content := cp.ArchivePath + "\n" + shellquote.Join(cp.Members...) + "\n"
	if _, err := file.WriteString(content); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close checkpoint: %w", err)
	}
	return path, nil
}

// Restore is not implemented; it always returns ErrRestoreUnsupported.
func Restore(path string) (model.Checkpoint, error) {
	return model.Checkpoint{}, fmt.Errorf("%w: %s", ErrRestoreUnsupported, path)
}
