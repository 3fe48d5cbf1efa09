// Package content describes the Torah text and commentary payloads and the
// origin sources they are read from.
package content

import (
	_ "embed"
	"fmt"
	"net/url"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Book is one of the five sefarim.
type Book struct {
	ID      int    `yaml:"id" json:"id"`
	Key     string `yaml:"key" json:"key"`         // bundle file name, e.g. "bereishit"
	Hebrew  string `yaml:"hebrew" json:"hebrew"`   // e.g. "בראשית"
	Sefaria string `yaml:"sefaria" json:"sefaria"` // e.g. "Genesis"
}

// CommentatorCategory groups commentators for display.
type CommentatorCategory string

const (
	CategoryClassic    CommentatorCategory = "classic"
	CategoryTargum     CommentatorCategory = "targum"
	CategoryAdditional CommentatorCategory = "additional"
)

// Commentator is a mefaresh known to the application.
type Commentator struct {
	Hebrew   string              `yaml:"hebrew" json:"hebrew"`
	English  string              `yaml:"english" json:"english"`
	Category CommentatorCategory `yaml:"category" json:"category"`
}

// Catalog is the fixed set of books and commentators.
type Catalog struct {
	Books        []Book        `yaml:"books"`
	Commentators []Commentator `yaml:"commentators"`

	byEnglish map[string]Commentator
	byHebrew  map[string]Commentator
}

var defaultCatalog = mustLoadCatalog(catalogYAML)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c.byEnglish = make(map[string]Commentator, len(c.Commentators))
	c.byHebrew = make(map[string]Commentator, len(c.Commentators))
	for _, m := range c.Commentators {
		c.byEnglish[m.English] = m
		c.byHebrew[m.Hebrew] = m
	}
	return &c, nil
}

func mustLoadCatalog(data []byte) *Catalog {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Book returns the book with the given id (1..5).
func (c *Catalog) Book(id int) (Book, bool) {
	for _, b := range c.Books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// ValidBook reports whether id names a known book.
func (c *Catalog) ValidBook(id int) bool {
	_, ok := c.Book(id)
	return ok
}

// NextBook returns the id following current, wrapping from the last book to the first.
func (c *Catalog) NextBook(current int) int {
	for i, b := range c.Books {
		if b.ID == current && i+1 < len(c.Books) {
			return c.Books[i+1].ID
		}
	}
	return c.Books[0].ID
}

// Commentator looks a commentator up by English name ("Ibn_Ezra").
func (c *Catalog) Commentator(english string) (Commentator, bool) {
	m, ok := c.byEnglish[english]
	return m, ok
}

// CommentatorByHebrew looks a commentator up by Hebrew name ("אבן עזרא").
func (c *Catalog) CommentatorByHebrew(hebrew string) (Commentator, bool) {
	m, ok := c.byHebrew[hebrew]
	return m, ok
}

// HebrewNames returns every commentator's Hebrew name, in catalog order.
func (c *Catalog) HebrewNames() []string {
	names := make([]string, 0, len(c.Commentators))
	for _, m := range c.Commentators {
		names = append(names, m.Hebrew)
	}
	return names
}

const sefariaBaseURL = "https://www.sefaria.org/"

// VerseURL links a pasuk on Sefaria.
func (c *Catalog) VerseURL(sefer, perek, pasuk int) string {
	b, ok := c.Book(sefer)
	if !ok {
		b = c.Books[0]
	}
	return sefariaBaseURL + url.PathEscape(b.Sefaria) + "." + strconv.Itoa(perek) + "." + strconv.Itoa(pasuk) + "?lang=he"
}

// CommentaryURL links a commentator's comment on a pasuk. Unknown
// commentators fall back to the verse link.
func (c *Catalog) CommentaryURL(sefer, perek, pasuk int, mefareshHebrew string) string {
	m, ok := c.CommentatorByHebrew(mefareshHebrew)
	if !ok {
		return c.VerseURL(sefer, perek, pasuk)
	}
	b, ok := c.Book(sefer)
	if !ok {
		b = c.Books[0]
	}
	ref := "." + strconv.Itoa(perek) + "." + strconv.Itoa(pasuk) + "?lang=he"
	if m.English == "Onkelos" {
		return sefariaBaseURL + "Onkelos_" + b.Sefaria + ref
	}
	return sefariaBaseURL + m.English + "_on_" + b.Sefaria + ref
}
