package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// ErrNotFound is returned when the origin has no payload for a request.
var ErrNotFound = errors.New("content not found")

// Source resolves book and commentary payloads from their origin.
type Source interface {
	Sefer(ctx context.Context, id int) (*Sefer, error)
	Commentary(ctx context.Context, mefareshEn string, sefer int) (*Commentary, error)
}

// SeferPath is the bundle-relative file of a book ("bereishit.json").
func SeferPath(b Book) string {
	return b.Key + ".json"
}

// CommentaryPath is the bundle-relative file of a commentary
// ("sefaria/Rashi_on_Genesis.json").
func CommentaryPath(m Commentator, b Book) string {
	return path.Join("sefaria", m.English+"_on_"+b.Sefaria+".json")
}

// FSSource reads payloads from a directory laid out like the bundle.
type FSSource struct {
	fsys    fs.FS
	catalog *Catalog
}

// NewFSSource creates a source over fsys.
func NewFSSource(fsys fs.FS, catalog *Catalog) *FSSource {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &FSSource{fsys: fsys, catalog: catalog}
}

func (s *FSSource) Sefer(ctx context.Context, id int) (*Sefer, error) {
	b, ok := s.catalog.Book(id)
	if !ok {
		return nil, fmt.Errorf("sefer %d: %w", id, ErrNotFound)
	}
	var sefer Sefer
	if err := s.readJSON(ctx, SeferPath(b), &sefer); err != nil {
		return nil, err
	}
	return &sefer, nil
}

func (s *FSSource) Commentary(ctx context.Context, mefareshEn string, sefer int) (*Commentary, error) {
	b, ok := s.catalog.Book(sefer)
	if !ok {
		return nil, fmt.Errorf("sefer %d: %w", sefer, ErrNotFound)
	}
	m, ok := s.catalog.Commentator(mefareshEn)
	if !ok {
		return nil, fmt.Errorf("mefaresh %q: %w", mefareshEn, ErrNotFound)
	}
	var c Commentary
	if err := s.readJSON(ctx, CommentaryPath(m, b), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *FSSource) readJSON(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
