package candidate

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/verte-zerg/zipforce/internal/model"
)

func writeDictionary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	return path
}

func readAll(t *testing.T, path string) []string {
	t.Helper()
	dict, err := OpenDictionary(path)
	if err != nil {
		t.Fatalf("open dictionary: %v", err)
	}
	t.Cleanup(func() {
		_ = dict.Close()
	})
	var out []string
	for c := range dict.Candidates() {
		if c.Source != model.SourceDictionary {
			t.Fatalf("expected dictionary source for %q", c.Password)
		}
		out = append(out, c.Password)
	}
	if err := dict.Err(); err != nil {
		t.Fatalf("dictionary err: %v", err)
	}
	return out
}

func TestDictionaryFileOrder(t *testing.T) {
	got := readAll(t, writeDictionary(t, "wrong1\nwrong2\nsecret\nnever-tried\n"))
	want := []string{"wrong1", "wrong2", "secret", "never-tried"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected words: %v", got)
	}
}

func TestDictionaryStripsOnlyLineTerminators(t *testing.T) {
	got := readAll(t, writeDictionary(t, "  lead\r\ntrail  \n\nin ner\nlast"))
	want := []string{"  lead", "trail  ", "", "in ner", "last"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected words: %q", got)
	}
}

func TestDictionaryKeepsDuplicates(t *testing.T) {
	got := readAll(t, writeDictionary(t, "a\na\nb\n"))
	if !reflect.DeepEqual(got, []string{"a", "a", "b"}) {
		t.Fatalf("unexpected words: %v", got)
	}
}

func TestDictionaryLongLine(t *testing.T) {
	long := strings.Repeat("x", 200000)
	got := readAll(t, writeDictionary(t, long+"\nshort\n"))
	if len(got) != 2 || got[0] != long || got[1] != "short" {
		t.Fatalf("unexpected words count %d", len(got))
	}
}

func TestDictionaryEmptyFile(t *testing.T) {
	if got := readAll(t, writeDictionary(t, "")); len(got) != 0 {
		t.Fatalf("expected no words, got %v", got)
	}
}

func TestOpenDictionaryMissing(t *testing.T) {
	_, err := OpenDictionary(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrDictionaryUnreadable) {
		t.Fatalf("expected ErrDictionaryUnreadable, got %v", err)
	}
}
