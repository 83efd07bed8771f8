// Package alphabet assembles password symbol sets from character classes.
package alphabet

import "strings"

const (
	Lower   = "abcdefghijklmnopqrstuvwxyz"
	Upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits  = "0123456789"
	Special = " !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Classes selects which symbol groups are included.
type Classes struct {
	Lower   bool
	Upper   bool
	Digits  bool
	Special bool
}

// Any reports whether at least one class is selected.
func (c Classes) Any() bool {
	return c.Lower || c.Upper || c.Digits || c.Special
}

// Build concatenates the selected classes in lower, upper, digits, special order.
// specialSet replaces the default special characters. Repeated symbols keep their
// first position.
func Build(c Classes, specialSet string) string {
	var b strings.Builder
	if c.Lower {
		b.WriteString(Lower)
	}
	if c.Upper {
		b.WriteString(Upper)
	}
	if c.Digits {
		b.WriteString(Digits)
	}
	if c.Special {
		b.WriteString(specialSet)
	}
	return dedupe(b.String())
}

func dedupe(s string) string {
	seen := make(map[rune]struct{}, len(s))
	var b strings.Builder
	for _, r := range s {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		b.WriteRune(r)
	}
	return b.String()
}
