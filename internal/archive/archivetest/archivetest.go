// Package archivetest builds encrypted ZIP fixtures for tests.
package archivetest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yeka/zip"
)

// Entry is one member written into a fixture archive.
type Entry struct {
	Name string
	Data string
}

// Write creates an archive in a temp directory with every entry encrypted by
// password using method and returns its path.
func Write(t *testing.T, password string, method zip.EncryptionMethod, entries ...Entry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.zip")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	w := zip.NewWriter(file)
	for _, e := range entries {
		entry, err := w.Encrypt(e.Name, password, method)
		if err != nil {
			t.Fatalf("encrypt %s: %v", e.Name, err)
		}
		if _, err := entry.Write([]byte(e.Data)); err != nil {
			t.Fatalf("write %s: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return path
}
