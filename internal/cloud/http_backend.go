package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ColumnPayload is the body of the column endpoints served by internal/http.
type ColumnPayload struct {
	Value json.RawMessage `json:"value"`
}

// HTTPBackend reads and writes columns through the remote settings API. The
// user is identified by the bearer token; the userID argument is not sent.
type HTTPBackend struct {
	baseURL    string
	token      func() string
	httpClient *http.Client
}

// NewHTTPBackend creates a backend for the API at baseURL. token is called
// before every request and may return "" when no user is signed in.
func NewHTTPBackend(baseURL string, token func() string) *HTTPBackend {
	if token == nil {
		token = func() string { return "" }
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (b *HTTPBackend) columnURL(table, column string) string {
	return fmt.Sprintf("%s/api/cloud/%s/%s", b.baseURL, url.PathEscape(table), url.PathEscape(column))
}

func (b *HTTPBackend) ReadColumn(ctx context.Context, table, column, userID string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.columnURL(table, column), nil)
	if err != nil {
		return nil, err
	}

	var payload ColumnPayload
	if err := b.do(req, &payload); err != nil {
		return nil, err
	}
	if len(payload.Value) == 0 || string(payload.Value) == "null" {
		return nil, nil
	}
	return payload.Value, nil
}

func (b *HTTPBackend) WriteColumn(ctx context.Context, table, column, userID string, value json.RawMessage) error {
	body, err := json.Marshal(ColumnPayload{Value: value})
	if err != nil {
		return fmt.Errorf("cloud: encode %s: %w", column, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.columnURL(table, column), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, nil)
}

// Ping checks that the API answers. Used as the connectivity probe.
func (b *HTTPBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return b.do(req, nil)
}

func (b *HTTPBackend) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Chumash/1.0")
	if token := b.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloud: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
	case http.StatusNotFound:
		return ErrNoRow
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadRequest:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s", ErrUnknownColumn, strings.TrimSpace(string(msg)))
	default:
		return fmt.Errorf("cloud: %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cloud: decode response: %w", err)
	}
	return nil
}
