// Package search indexes the flattened Torah corpus and answers fuzzy
// queries through a single worker goroutine.
package search

import "encoding/json"

// Kind is the record type as it appears on the wire.
type Kind string

const (
	KindPasuk    Kind = "pasuk"
	KindQuestion Kind = "question"
	KindPerush   Kind = "perush"
)

// Valid reports whether k is a known record kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPasuk, KindQuestion, KindPerush:
		return true
	}
	return false
}

// Record is one searchable unit of the corpus.
type Record struct {
	Kind         Kind            `json:"type"`
	ID           string          `json:"id"`
	Sefer        int             `json:"sefer"`
	Perek        int             `json:"perek"`
	Pasuk        int             `json:"pasuk_num"`
	Text         string          `json:"text"`
	Mefaresh     string          `json:"mefaresh,omitempty"`
	QuestionText string          `json:"questionText,omitempty"`
	Original     json.RawMessage `json:"originalItem,omitempty"`
}

// Field keys reported in Match.Key.
const (
	FieldText         = "text"
	FieldMefaresh     = "mefaresh"
	FieldQuestionText = "questionText"
)

// Match locates the hits inside one field. Indices are inclusive rune
// ranges into Value, the field text as stored in the record.
type Match struct {
	Key     string   `json:"key"`
	Value   string   `json:"value"`
	Indices [][2]int `json:"indices"`
}

// Result is a scored record. Lower scores are better; RefIndex is the
// record's position in the indexed corpus.
type Result struct {
	Item     Record  `json:"item"`
	RefIndex int     `json:"refIndex"`
	Score    float64 `json:"score"`
	Matches  []Match `json:"matches,omitempty"`
}

// Matcher is a replaceable fuzzy index. Index replaces any previous corpus;
// Search returns results ordered best first.
type Matcher interface {
	Index(records []Record)
	Search(query string) []Result
}
