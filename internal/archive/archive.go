// Package archive wraps encrypted ZIP access behind a trial-extraction primitive.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeka/zip"

	"github.com/verte-zerg/zipforce/internal/model"
)

var (
	// ErrArchiveNotFound is returned when the archive path does not exist.
	ErrArchiveNotFound = errors.New("archive not found")
	// ErrUnsafeMemberPath is returned for member names that escape the output directory.
	ErrUnsafeMemberPath = errors.New("member path escapes output directory")
)

// Archive is an open ZIP file held for the duration of a search.
type Archive struct {
	reader *zip.ReadCloser
	files  map[string]*zip.File
}

// Open opens the archive at path and indexes its members.
func Open(path string) (*Archive, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
		}
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	files := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		files[f.Name] = f
	}
	return &Archive{reader: reader, files: files}, nil
}

// Members lists member names in archive order.
func (a *Archive) Members() []string {
	names := make([]string, 0, len(a.reader.File))
	for _, f := range a.reader.File {
		names = append(names, f.Name)
	}
	return names
}

// Has reports whether name is a member of the archive.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// Close releases the archive file.
func (a *Archive) Close() error {
	return a.reader.Close()
}

// Extract decrypts members with password and writes them below outputDir. A
// rejected password before anything was written is WrongPassword; any failure
// after bytes reached the output directory is CorruptedOutput. The returned error
// is reserved for failures unrelated to the password, such as an unwritable
// output directory.
func (a *Archive) Extract(members []string, password, outputDir string) (model.TrialOutcome, error) {
	written := false
	// failed classifies an error after the output directory may hold bytes
	// from earlier members of this trial.
	failed := func(outcome model.TrialOutcome, err error) (model.TrialOutcome, error) {
		if written {
			return model.CorruptedOutput, err
		}
		return outcome, err
	}
	for _, name := range members {
		f, ok := a.files[name]
		if !ok {
			return failed(model.WrongPassword, fmt.Errorf("member %q not in archive", name))
		}
		dest, err := SafeJoin(outputDir, name)
		if err != nil {
			return failed(model.WrongPassword, err)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return failed(model.WrongPassword, fmt.Errorf("failed to create directory: %w", err))
			}
			continue
		}
		if f.IsEncrypted() {
			f.SetPassword(password)
		}
		rc, err := f.Open()
		if err != nil {
			if errors.Is(err, zip.ErrAlgorithm) {
				return failed(model.WrongPassword, fmt.Errorf("failed to open %s: %w", name, err))
			}
			return failed(model.WrongPassword, nil)
		}
		outcome, err := extractFile(rc, dest, f.Mode().Perm())
		if outcome == model.Success && err == nil {
			written = true
			continue
		}
		return failed(outcome, err)
	}
	return model.Success, nil
}

func extractFile(rc io.ReadCloser, dest string, perm fs.FileMode) (model.TrialOutcome, error) {
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			// Best-effort close of the member reader.
			_ = cerr
		}
	}()
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return model.WrongPassword, fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return model.WrongPassword, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	_, copyErr := io.Copy(out, rc)
	closeErr := out.Close()
	if copyErr != nil {
		var pathErr *fs.PathError
		if errors.As(copyErr, &pathErr) {
			return model.CorruptedOutput, fmt.Errorf("failed to write %s: %w", dest, copyErr)
		}
		return model.CorruptedOutput, nil
	}
	if closeErr != nil {
		return model.CorruptedOutput, fmt.Errorf("failed to close %s: %w", dest, closeErr)
	}
	return model.Success, nil
}

// SafeJoin returns the path of member name below dir, rejecting names that
// would resolve outside dir.
func SafeJoin(dir, name string) (string, error) {
	local := filepath.FromSlash(name)
	if name == "" || filepath.IsAbs(local) || filepath.VolumeName(local) != "" {
		return "", fmt.Errorf("%w: %q", ErrUnsafeMemberPath, name)
	}
	joined := filepath.Join(dir, local)
	rel, err := filepath.Rel(filepath.Clean(dir), joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeMemberPath, name)
	}
	return joined, nil
}
