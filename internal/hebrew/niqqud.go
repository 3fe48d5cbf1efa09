package hebrew

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// niqqudTable covers Hebrew points and cantillation marks (U+0591..U+05C7).
var niqqudTable = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0591, Hi: 0x05C7, Stride: 1}},
}

var niqqud = runes.In(niqqudTable)

// IsNiqqud reports whether r is a Hebrew vowel point or cantillation mark.
func IsNiqqud(r rune) bool {
	return niqqud.Contains(r)
}

// StripNiqqud removes vowel points and cantillation marks from s.
func StripNiqqud(s string) string {
	out, _, err := transform.String(runes.Remove(niqqud), s)
	if err != nil {
		return s
	}
	return out
}

// Normalized is a niqqud-free rendering of a string together with the rune
// offset of every kept rune in the source string.
type Normalized struct {
	Runes   []rune
	Offsets []int
}

// Normalize strips niqqud from s and keeps enough information to map match
// positions in the stripped text back onto s.
func Normalize(s string) Normalized {
	n := Normalized{
		Runes:   make([]rune, 0, len(s)/2),
		Offsets: make([]int, 0, len(s)/2),
	}
	i := 0
	for _, r := range s {
		if !niqqud.Contains(r) {
			n.Runes = append(n.Runes, r)
			n.Offsets = append(n.Offsets, i)
		}
		i++
	}
	return n
}

// String returns the stripped text.
func (n Normalized) String() string {
	return string(n.Runes)
}

// SourceRange maps the half-open range [start, end) of stripped runes onto an
// inclusive rune range in the source string. Trailing marks attached to the
// last kept rune are not included.
func (n Normalized) SourceRange(start, end int) (int, int) {
	if start < 0 || end > len(n.Offsets) || start >= end {
		return 0, -1
	}
	return n.Offsets[start], n.Offsets[end-1]
}
