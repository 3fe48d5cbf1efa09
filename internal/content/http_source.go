package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxPayloadSize bounds a single downloaded file.
const maxPayloadSize = 64 << 20

// HTTPSource fetches bundle files from a static file server using the same
// layout as FSSource.
type HTTPSource struct {
	baseURL    string
	catalog    *Catalog
	httpClient *http.Client
}

// NewHTTPSource creates a source rooted at baseURL.
func NewHTTPSource(baseURL string, catalog *Catalog) *HTTPSource {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		catalog: catalog,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *HTTPSource) Sefer(ctx context.Context, id int) (*Sefer, error) {
	b, ok := s.catalog.Book(id)
	if !ok {
		return nil, fmt.Errorf("sefer %d: %w", id, ErrNotFound)
	}
	var sefer Sefer
	if err := s.fetchJSON(ctx, SeferPath(b), &sefer); err != nil {
		return nil, err
	}
	return &sefer, nil
}

func (s *HTTPSource) Commentary(ctx context.Context, mefareshEn string, sefer int) (*Commentary, error) {
	b, ok := s.catalog.Book(sefer)
	if !ok {
		return nil, fmt.Errorf("sefer %d: %w", sefer, ErrNotFound)
	}
	m, ok := s.catalog.Commentator(mefareshEn)
	if !ok {
		return nil, fmt.Errorf("mefaresh %q: %w", mefareshEn, ErrNotFound)
	}
	var c Commentary
	if err := s.fetchJSON(ctx, CommentaryPath(m, b), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *HTTPSource) fetchJSON(ctx context.Context, name string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+name, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Chumash/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: status %d", name, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadSize)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
