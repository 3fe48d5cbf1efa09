package hebrew

import (
	"regexp"
	"strconv"
	"strings"
)

var mefareshFixes = []struct {
	re *regexp.Regexp
	to string
}{
	{regexp.MustCompile(`אבן\s?עזרה`), "אבן עזרא"},
	{regexp.MustCompile(`אִבְּן\s?עֶזְרָה`), "אבן עזרא"},
	{regexp.MustCompile(`(?i)Ibn\s?Ezra`), "אבן עזרא"},
}

// NormalizeMefaresh fixes common spelling variants of commentator names so
// that filters and grouping see a single canonical form.
func NormalizeMefaresh(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	for _, fix := range mefareshFixes {
		n = fix.re.ReplaceAllString(n, fix.to)
	}
	return n
}

// VerseRef addresses a single pasuk.
type VerseRef struct {
	Sefer int
	Perek int
	Pasuk int
}

// ParseVerseID parses ids of the form "1-2-3" (sefer-perek-pasuk).
func ParseVerseID(id string) (VerseRef, bool) {
	parts := strings.Split(id, "-")
	if len(parts) < 3 {
		return VerseRef{}, false
	}
	var nums [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return VerseRef{}, false
		}
		nums[i] = v
	}
	return VerseRef{Sefer: nums[0], Perek: nums[1], Pasuk: nums[2]}, true
}

// String formats the reference back into its id form.
func (r VerseRef) String() string {
	return strconv.Itoa(r.Sefer) + "-" + strconv.Itoa(r.Perek) + "-" + strconv.Itoa(r.Pasuk)
}
