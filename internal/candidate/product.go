// Package candidate produces password candidates lazily.
package candidate

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/verte-zerg/zipforce/internal/model"
)

// ErrOverflow is returned when a search space does not fit in uint64.
var ErrOverflow = errors.New("search space overflows uint64")

// Product yields every word over alphabet of length 1 through maxLength. Shorter
// words come first; within a length the leftmost symbol varies slowest, following
// the declared symbol order.
func Product(alphabet string, maxLength int) iter.Seq[model.Candidate] {
	symbols := []rune(alphabet)
	return func(yield func(model.Candidate) bool) {
		if len(symbols) == 0 {
			return
		}
		for length := 1; length <= maxLength; length++ {
			indices := make([]int, length)
			word := make([]rune, length)
			for {
				for i, idx := range indices {
					word[i] = symbols[idx]
				}
				if !yield(model.Candidate{Password: string(word), Source: model.SourceGenerated}) {
					return
				}
				if !advance(indices, len(symbols)) {
					break
				}
			}
		}
	}
}

// advance increments indices as an odometer. It returns false after the last word.
func advance(indices []int, base int) bool {
	for i := len(indices) - 1; i >= 0; i-- {
		indices[i]++
		if indices[i] < base {
			return true
		}
		indices[i] = 0
	}
	return false
}

// Total returns k^1 + k^2 + ... + k^maxLength for an alphabet of k symbols.
func Total(alphabet string, maxLength int) (uint64, error) {
	base := uint64(len([]rune(alphabet)))
	if base == 0 {
		return 0, nil
	}
	var total uint64
	power := uint64(1)
	for l := 1; l <= maxLength; l++ {
		if power > math.MaxUint64/base {
			return 0, ErrOverflow
		}
		power *= base
		if total > math.MaxUint64-power {
			return 0, ErrOverflow
		}
		total += power
	}
	return total, nil
}

// Position returns the 1-indexed position of word in the order produced by Product.
func Position(alphabet, word string) (uint64, error) {
	symbols := []rune(alphabet)
	letters := []rune(word)
	if len(letters) == 0 {
		return 0, fmt.Errorf("empty word")
	}
	base := uint64(len(symbols))
	shorter, err := Total(alphabet, len(letters)-1)
	if err != nil {
		return 0, err
	}
	var offset uint64
	for _, r := range letters {
		idx := strings.IndexRune(alphabet, r)
		if idx < 0 {
			return 0, fmt.Errorf("symbol %q not in alphabet", r)
		}
		if offset > (math.MaxUint64-base)/base {
			return 0, ErrOverflow
		}
		offset = offset*base + uint64(len([]rune(alphabet[:idx])))
	}
	return shorter + offset + 1, nil
}

// WordAt returns the word at 1-indexed position pos in the order produced by
// Product for words up to maxLength. It is the inverse of Position.
func WordAt(alphabet string, maxLength int, pos uint64) (string, error) {
	symbols := []rune(alphabet)
	base := uint64(len(symbols))
	if base == 0 {
		return "", fmt.Errorf("empty alphabet")
	}
	if pos == 0 {
		return "", fmt.Errorf("position must be >= 1")
	}
	remaining := pos - 1
	count := uint64(1)
	for length := 1; length <= maxLength; length++ {
		if count > math.MaxUint64/base {
			return "", ErrOverflow
		}
		count *= base
		if remaining < count {
			word := make([]rune, length)
			for i := length - 1; i >= 0; i-- {
				word[i] = symbols[remaining%base]
				remaining /= base
			}
			return string(word), nil
		}
		remaining -= count
	}
	return "", fmt.Errorf("position %d is beyond words of length %d", pos, maxLength)
}
