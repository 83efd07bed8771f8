package candidate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/verte-zerg/zipforce/internal/model"
)

// ErrDictionaryUnreadable is returned when the dictionary cannot be opened or read.
var ErrDictionaryUnreadable = errors.New("dictionary file is unreadable")

// Dictionary streams passwords from a newline-delimited file.
type Dictionary struct {
	file *os.File
	err  error
}

// OpenDictionary opens the dictionary at path for streaming.
func OpenDictionary(path string) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDictionaryUnreadable, err)
	}
	return &Dictionary{file: file}, nil
}

// Candidates yields one candidate per line in file order. Only the trailing line
// terminator is removed. The sequence can be consumed once.
func (d *Dictionary) Candidates() iter.Seq[model.Candidate] {
	return func(yield func(model.Candidate) bool) {
		reader := bufio.NewReader(d.file)
		for {
			line, err := reader.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				d.err = fmt.Errorf("%w: %w", ErrDictionaryUnreadable, err)
				return
			}
			if line == "" && err != nil {
				return
			}
			word := strings.TrimSuffix(line, "\n")
			word = strings.TrimSuffix(word, "\r")
			if !yield(model.Candidate{Password: word, Source: model.SourceDictionary}) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// Err reports a read failure that stopped Candidates early.
func (d *Dictionary) Err() error {
	return d.err
}

// Close releases the underlying file.
func (d *Dictionary) Close() error {
	return d.file.Close()
}
