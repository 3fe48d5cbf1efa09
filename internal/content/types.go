package content

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ItemID accepts both numeric and string ids from bundle files.
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ItemID(n.String())
	return nil
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Sefer is a whole book as stored in the bundle.
type Sefer struct {
	ID       int      `json:"id,omitempty"`
	Name     string   `json:"name,omitempty"`
	Parshiot []Parsha `json:"parshiot"`
}

type Parsha struct {
	ID      ItemID  `json:"id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Perakim []Perek `json:"perakim"`
}

type Perek struct {
	PerekNum int     `json:"perek_num"`
	Pesukim  []Pasuk `json:"pesukim"`
}

type Pasuk struct {
	ID       ItemID         `json:"id"`
	PasukNum int            `json:"pasuk_num"`
	Text     string         `json:"text"`
	Content  []PasukContent `json:"content,omitempty"`
}

// PasukContent groups the study questions attached to a pasuk.
type PasukContent struct {
	ID        ItemID     `json:"id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions,omitempty"`
}

type Question struct {
	ID       ItemID   `json:"id"`
	Text     string   `json:"text"`
	Perushim []Perush `json:"perushim,omitempty"`
}

type Perush struct {
	ID       ItemID `json:"id"`
	Mefaresh string `json:"mefaresh"`
	Text     string `json:"text"`
}

// VerseCount returns the number of pesukim in the book.
func (s *Sefer) VerseCount() int {
	n := 0
	for _, p := range s.Parshiot {
		for _, pr := range p.Perakim {
			n += len(pr.Pesukim)
		}
	}
	return n
}

// CommentaryEntry is one commentator's text on one pasuk. Sefaria files store
// either a single string or a list of segments per pasuk.
type CommentaryEntry []string

func (e *CommentaryEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*e = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*e = nil
			return nil
		}
		*e = CommentaryEntry{s}
		return nil
	default:
		var segments []string
		if err := json.Unmarshal(data, &segments); err != nil {
			return err
		}
		*e = segments
		return nil
	}
}

// Text joins the entry's segments with spaces.
func (e CommentaryEntry) Text() string {
	return strings.TrimSpace(strings.Join(e, " "))
}

// Commentary is a whole commentator-on-book file: Text[perek-1][pasuk-1].
type Commentary struct {
	Title    string              `json:"title,omitempty"`
	Language string              `json:"language,omitempty"`
	Text     [][]CommentaryEntry `json:"text"`
}

// Verse returns the commentary text for a 1-based perek/pasuk, or "".
func (c *Commentary) Verse(perek, pasuk int) string {
	if c == nil || perek < 1 || perek > len(c.Text) {
		return ""
	}
	row := c.Text[perek-1]
	if pasuk < 1 || pasuk > len(row) {
		return ""
	}
	return row[pasuk-1].Text()
}

// LoadedCommentary pairs a commentary file with the commentator it belongs to.
type LoadedCommentary struct {
	Commentator Commentator
	Data        *Commentary
}
