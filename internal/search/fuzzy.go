package search

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/mrlokans/chumash/internal/hebrew"
)

const (
	// DefaultThreshold is the largest accepted errors/pattern-length ratio.
	DefaultThreshold = 0.2
	// MinQueryLength is the shortest term, in runes, that can match.
	MinQueryLength = 2

	// epsilon stands in for an exact match's zero score in the product.
	epsilon = 0x1p-52
)

type field struct {
	key    string
	weight float64
	value  func(*Record) string
}

var defaultFields = []field{
	{key: FieldText, weight: 2, value: func(r *Record) string { return r.Text }},
	{key: FieldMefaresh, weight: 1.5, value: func(r *Record) string { return r.Mefaresh }},
	{key: FieldQuestionText, weight: 1, value: func(r *Record) string { return r.QuestionText }},
}

type indexedField struct {
	present bool
	norm    hebrew.Normalized
	folded  []rune
	// fieldNorm is 1/sqrt(token count), so hits in short fields rank higher.
	fieldNorm float64
}

// FuzzyMatcher scores records by approximate substring matching over the
// niqqud-free text, mefaresh and question fields. Match location inside a
// field is ignored.
//
// A query is split on "|" into alternatives and each alternative on
// whitespace into terms that must all match the same field. Terms are fuzzy
// unless prefixed: =term (whole field), 'term (exact substring), ^term
// (prefix), term$ (suffix), !term (must not contain), !^term, !term$.
type FuzzyMatcher struct {
	threshold float64
	fields    []field

	records []Record
	index   [][]indexedField
}

type FuzzyOption func(*FuzzyMatcher)

// WithThreshold sets the accepted errors/length ratio.
func WithThreshold(t float64) FuzzyOption {
	return func(m *FuzzyMatcher) { m.threshold = t }
}

func NewFuzzyMatcher(opts ...FuzzyOption) *FuzzyMatcher {
	m := &FuzzyMatcher{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(m)
	}

	total := 0.0
	for _, f := range defaultFields {
		total += f.weight
	}
	m.fields = make([]field, len(defaultFields))
	for i, f := range defaultFields {
		f.weight /= total
		m.fields[i] = f
	}
	return m
}

func (m *FuzzyMatcher) Index(records []Record) {
	m.records = slices.Clone(records)
	m.index = make([][]indexedField, len(m.records))
	for i := range m.records {
		fields := make([]indexedField, len(m.fields))
		for j, f := range m.fields {
			value := f.value(&m.records[i])
			if value == "" {
				continue
			}
			norm := hebrew.Normalize(value)
			folded := foldRunes(norm.Runes)
			tokens := len(strings.Fields(string(folded)))
			if tokens == 0 {
				continue
			}
			fields[j] = indexedField{
				present:   true,
				norm:      norm,
				folded:    folded,
				fieldNorm: math.Round(1000/math.Sqrt(float64(tokens))) / 1000,
			}
		}
		m.index[i] = fields
	}
}

// Len returns the number of indexed records.
func (m *FuzzyMatcher) Len() int {
	return len(m.records)
}

func (m *FuzzyMatcher) Search(query string) []Result {
	q := parseQuery(query)
	if len(q) == 0 {
		return nil
	}

	var results []Result
	for i := range m.records {
		total := 1.0
		var matches []Match
		for j, f := range m.fields {
			idx := m.index[i][j]
			if !idx.present {
				continue
			}
			score, ranges, ok := q.match(idx.folded, m.threshold)
			if !ok {
				continue
			}
			if score == 0 {
				score = epsilon
			}
			total *= math.Pow(score, f.weight*idx.fieldNorm)
			matches = append(matches, m.matchFor(i, j, ranges))
		}
		if matches == nil {
			continue
		}
		results = append(results, Result{
			Item:     m.records[i],
			RefIndex: i,
			Score:    total,
			Matches:  matches,
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.RefIndex, b.RefIndex)
	})
	return results
}

func (m *FuzzyMatcher) matchFor(rec, fld int, ranges [][2]int) Match {
	idx := m.index[rec][fld]
	match := Match{
		Key:     m.fields[fld].key,
		Value:   m.fields[fld].value(&m.records[rec]),
		Indices: make([][2]int, 0, len(ranges)),
	}
	for _, r := range ranges {
		start, end := idx.norm.SourceRange(r[0], r[1])
		if end < start {
			continue
		}
		match.Indices = append(match.Indices, [2]int{start, end})
	}
	slices.SortFunc(match.Indices, func(a, b [2]int) int { return cmp.Compare(a[0], b[0]) })
	return match
}

func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

type termKind int

const (
	termFuzzy termKind = iota
	termExact
	termInclude
	termPrefix
	termSuffix
)

type term struct {
	kind    termKind
	inverse bool
	pattern []rune
}

// query is a list of alternatives, each a list of terms.
type query [][]term

func parseQuery(s string) query {
	s = hebrew.StripNiqqud(strings.TrimSpace(s))
	var q query
	for _, alt := range strings.Split(s, "|") {
		var terms []term
		for _, tok := range strings.Fields(alt) {
			if t, ok := parseTerm(tok); ok {
				terms = append(terms, t)
			}
		}
		if len(terms) > 0 {
			q = append(q, terms)
		}
	}
	return q
}

func parseTerm(tok string) (term, bool) {
	var t term
	if strings.HasPrefix(tok, "!") {
		t.inverse = true
		tok = tok[1:]
	}
	switch {
	case !t.inverse && strings.HasPrefix(tok, "="):
		t.kind, tok = termExact, tok[1:]
	case !t.inverse && strings.HasPrefix(tok, "'"):
		t.kind, tok = termInclude, tok[1:]
	case strings.HasPrefix(tok, "^"):
		t.kind, tok = termPrefix, tok[1:]
	case strings.HasSuffix(tok, "$"):
		t.kind, tok = termSuffix, strings.TrimSuffix(tok, "$")
	case t.inverse:
		t.kind = termInclude
	}
	t.pattern = foldRunes([]rune(tok))
	if len(t.pattern) == 0 {
		return t, false
	}
	if !t.inverse && len(t.pattern) < MinQueryLength {
		return t, false
	}
	return t, true
}

// match tries each alternative in order. The first one whose terms all match
// the field wins; its score is the mean of the term scores.
func (q query) match(text []rune, threshold float64) (float64, [][2]int, bool) {
	for _, terms := range q {
		sum := 0.0
		var ranges [][2]int
		ok := true
		for _, t := range terms {
			score, r, hit := t.match(text, threshold)
			if !hit {
				ok = false
				break
			}
			sum += score
			if r[0] < r[1] {
				ranges = append(ranges, r)
			}
		}
		if ok {
			return sum / float64(len(terms)), ranges, true
		}
	}
	return 0, nil, false
}

func (t term) match(text []rune, threshold float64) (float64, [2]int, bool) {
	var r [2]int
	found := false
	score := 0.0

	switch t.kind {
	case termExact:
		if slices.Equal(text, t.pattern) {
			r, found = [2]int{0, len(text)}, true
		}
	case termInclude:
		if i := indexRunes(text, t.pattern); i >= 0 {
			r, found = [2]int{i, i + len(t.pattern)}, true
		}
	case termPrefix:
		if hasPrefix(text, t.pattern) {
			r, found = [2]int{0, len(t.pattern)}, true
		}
	case termSuffix:
		if n, p := len(text), len(t.pattern); n >= p && slices.Equal(text[n-p:], t.pattern) {
			r, found = [2]int{n - p, n}, true
		}
	case termFuzzy:
		maxErrors := int(threshold*float64(len(t.pattern)) + 1e-9)
		errs, start, end, ok := fuzzyFind(t.pattern, text, maxErrors)
		if ok {
			r, found = [2]int{start, end}, true
			score = float64(errs) / float64(len(t.pattern))
		}
	}

	if t.inverse {
		return 0, [2]int{}, !found
	}
	return score, r, found
}

// fuzzyFind returns the smallest edit distance between pattern and any
// substring of text, and the half-open range of the leftmost such
// substring. ok is false when the distance exceeds maxErrors.
func fuzzyFind(pattern, text []rune, maxErrors int) (errs, start, end int, ok bool) {
	m := len(pattern)
	if m == 0 || len(text) == 0 {
		return 0, 0, 0, false
	}

	// col[i] is the distance of pattern[:i] to the best substring ending at
	// the current text position; from[i] is where that substring starts.
	col := make([]int, m+1)
	from := make([]int, m+1)
	next := make([]int, m+1)
	nextFrom := make([]int, m+1)
	for i := range col {
		col[i] = i
	}

	best := m + 1
	for j := 1; j <= len(text); j++ {
		next[0], nextFrom[0] = 0, j
		for i := 1; i <= m; i++ {
			cost := 1
			if pattern[i-1] == text[j-1] {
				cost = 0
			}
			d, f := col[i-1]+cost, from[i-1]
			if v := col[i] + 1; v < d {
				d, f = v, from[i]
			}
			if v := next[i-1] + 1; v < d {
				d, f = v, nextFrom[i-1]
			}
			next[i], nextFrom[i] = d, f
		}
		if next[m] < best {
			best, start, end = next[m], nextFrom[m], j
			if best == 0 {
				break
			}
		}
		col, next = next, col
		from, nextFrom = nextFrom, from
	}

	if best > maxErrors || start >= end {
		return 0, 0, 0, false
	}
	return best, start, end, true
}

func indexRunes(text, pattern []rune) int {
	for i := 0; i+len(pattern) <= len(text); i++ {
		if slices.Equal(text[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

func hasPrefix(text, prefix []rune) bool {
	return len(text) >= len(prefix) && slices.Equal(text[:len(prefix)], prefix)
}
