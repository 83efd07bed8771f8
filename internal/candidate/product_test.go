package candidate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/verte-zerg/zipforce/internal/alphabet"
	"github.com/verte-zerg/zipforce/internal/model"
)

func collect(t *testing.T, alphabetSet string, maxLength int) []string {
	t.Helper()
	var out []string
	for c := range Product(alphabetSet, maxLength) {
		if c.Source != model.SourceGenerated {
			t.Fatalf("expected generated source for %q", c.Password)
		}
		out = append(out, c.Password)
	}
	return out
}

func TestProductOrder(t *testing.T) {
	got := collect(t, "ab", 2)
	want := []string{"a", "b", "aa", "ab", "ba", "bb"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestProductExhaustsShorterLengthsFirst(t *testing.T) {
	words := collect(t, "xyz", 3)
	prev := 0
	for _, w := range words {
		if len(w) < prev {
			t.Fatalf("length decreased at %q", w)
		}
		prev = len(w)
	}
}

func TestProductCountMatchesTotal(t *testing.T) {
	cases := []struct {
		alphabet string
		max      int
		want     uint64
	}{
		{"ab", 1, 2},
		{"ab", 3, 2 + 4 + 8},
		{"abc", 4, 3 + 9 + 27 + 81},
		{"0123456789", 3, 10 + 100 + 1000},
	}
	for _, tc := range cases {
		words := collect(t, tc.alphabet, tc.max)
		total, err := Total(tc.alphabet, tc.max)
		if err != nil {
			t.Fatalf("total: %v", err)
		}
		if total != tc.want || uint64(len(words)) != tc.want {
			t.Fatalf("alphabet %q max %d: total %d, generated %d, want %d", tc.alphabet, tc.max, total, len(words), tc.want)
		}
	}
}

func TestProductEmptyAlphabet(t *testing.T) {
	if words := collect(t, "", 3); len(words) != 0 {
		t.Fatalf("expected no words, got %v", words)
	}
}

func TestProductStopsWhenConsumerStops(t *testing.T) {
	count := 0
	for range Product("abc", 5) {
		count++
		if count == 4 {
			break
		}
	}
	if count != 4 {
		t.Fatalf("expected 4 words, got %d", count)
	}
}

func TestProductIsRestartable(t *testing.T) {
	seq := Product("ab", 2)
	var first, second []string
	for c := range seq {
		first = append(first, c.Password)
	}
	for c := range seq {
		second = append(second, c.Password)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical runs, got %v and %v", first, second)
	}
}

func TestProductMultibyteSymbols(t *testing.T) {
	got := collect(t, "äß", 2)
	want := []string{"ä", "ß", "ää", "äß", "ßä", "ßß"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected words: %v", got)
	}
}

func TestPositionMatchesProduct(t *testing.T) {
	set := "abc"
	var i uint64
	for c := range Product(set, 3) {
		i++
		pos, err := Position(set, c.Password)
		if err != nil {
			t.Fatalf("position %q: %v", c.Password, err)
		}
		if pos != i {
			t.Fatalf("word %q: expected position %d, got %d", c.Password, i, pos)
		}
	}
}

func TestPositionOfSecret(t *testing.T) {
	pos, err := Position(alphabet.Lower, "secret")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	shorter, err := Total(alphabet.Lower, 5)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	// s=18 e=4 c=2 r=17 e=4 t=19 in base 26.
	offset := uint64(((((18*26+4)*26+2)*26+17)*26+4)*26 + 19)
	if pos != shorter+offset+1 {
		t.Fatalf("unexpected position %d", pos)
	}
}

func TestPositionRejectsForeignSymbol(t *testing.T) {
	if _, err := Position("ab", "abc"); err == nil {
		t.Fatalf("expected error for symbol outside alphabet")
	}
	if _, err := Position("ab", ""); err == nil {
		t.Fatalf("expected error for empty word")
	}
}

func TestWordAtInvertsPosition(t *testing.T) {
	for _, set := range []string{"abc", "äß"} {
		var i uint64
		for c := range Product(set, 3) {
			i++
			word, err := WordAt(set, 3, i)
			if err != nil {
				t.Fatalf("word at %d: %v", i, err)
			}
			if word != c.Password {
				t.Fatalf("position %d: expected %q, got %q", i, c.Password, word)
			}
			pos, err := Position(set, word)
			if err != nil || pos != i {
				t.Fatalf("round trip of %q gave %d (%v)", word, pos, err)
			}
		}
	}
}

func TestWordAtSecret(t *testing.T) {
	pos, err := Position(alphabet.Lower, "secret")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	word, err := WordAt(alphabet.Lower, 8, pos)
	if err != nil || word != "secret" {
		t.Fatalf("expected secret, got %q (%v)", word, err)
	}
}

func TestWordAtOutOfRange(t *testing.T) {
	total, err := Total("ab", 2)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if _, err := WordAt("ab", 2, total+1); err == nil {
		t.Fatalf("expected error past the last word")
	}
	if _, err := WordAt("ab", 2, 0); err == nil {
		t.Fatalf("expected error for position 0")
	}
	if _, err := WordAt("", 2, 1); err == nil {
		t.Fatalf("expected error for empty alphabet")
	}
}

func TestTotalOverflow(t *testing.T) {
	if _, err := Total(alphabet.Lower+alphabet.Upper+alphabet.Digits, 20); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}
