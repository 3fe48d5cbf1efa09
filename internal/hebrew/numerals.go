// Package hebrew provides helpers for Hebrew text: gematria numerals,
// niqqud stripping for search normalization and commentator name fixes.
package hebrew

import (
	"strconv"
	"strings"
)

const (
	geresh    = "׳"
	gershayim = "״"
)

var (
	ones     = []string{"", "א", "ב", "ג", "ד", "ה", "ו", "ז", "ח", "ט"}
	tens     = []string{"", "י", "כ", "ל", "מ", "נ", "ס", "ע", "פ", "צ"}
	hundreds = []string{"", "ק", "ר", "ש", "ת"}
)

var letterValues = map[rune]int{
	'א': 1, 'ב': 2, 'ג': 3, 'ד': 4, 'ה': 5, 'ו': 6, 'ז': 7, 'ח': 8, 'ט': 9,
	'י': 10, 'כ': 20, 'ל': 30, 'מ': 40, 'נ': 50, 'ס': 60, 'ע': 70, 'פ': 80, 'צ': 90,
	'ק': 100, 'ר': 200, 'ש': 300, 'ת': 400,
	// final forms
	'ך': 20, 'ם': 40, 'ן': 50, 'ף': 80, 'ץ': 90,
}

// ToNumber renders n as a Hebrew numeral (1 -> "א׳", 15 -> "ט״ו", 613 -> "תרי״ג").
// Zero and negative values render as an empty string; values above 999 fall
// back to decimal digits.
func ToNumber(n int) string {
	if n <= 0 {
		return ""
	}
	if n > 999 {
		return strconv.Itoa(n)
	}

	var b strings.Builder
	h := n / 100
	for h > 4 {
		b.WriteString(hundreds[4])
		h -= 4
	}
	b.WriteString(hundreds[h])

	// 15 and 16 are written 9+6 / 9+7 to avoid spelling the divine name.
	switch rest := n % 100; rest {
	case 15:
		b.WriteString("טו")
	case 16:
		b.WriteString("טז")
	default:
		b.WriteString(tens[rest/10])
		b.WriteString(ones[rest%10])
	}

	letters := []rune(b.String())
	if len(letters) == 1 {
		return string(letters) + geresh
	}
	return string(letters[:len(letters)-1]) + gershayim + string(letters[len(letters)-1])
}

// FromNumber parses a Hebrew numeral back into its integer value. Geresh and
// gershayim marks (and their ASCII stand-ins) are ignored. Plain decimal
// strings are accepted so that ToNumber output above 999 round-trips.
func FromNumber(s string) int {
	cleaned := strings.NewReplacer(geresh, "", gershayim, "", "'", "", "\"", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0
	}
	if v, err := strconv.Atoi(cleaned); err == nil {
		return v
	}

	total := 0
	for _, r := range cleaned {
		total += letterValues[r]
	}
	return total
}
