package search

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotInitialized = errors.New(errNotInitialized)
	ErrClosed         = errors.New(errEngineClosed)
	ErrEngine         = errors.New("search engine error")
)

// Client is a request/response wrapper around an Engine.
type Client struct {
	engine *Engine
}

func NewClient(engine *Engine) *Client {
	return &Client{engine: engine}
}

// Init replaces the index with records and waits until it is ready.
func (c *Client) Init(ctx context.Context, records []Record) error {
	resp, err := c.roundTrip(ctx, Request{Type: MsgInitIndex, Payload: RequestPayload{Items: records}})
	if err != nil {
		return err
	}
	if resp.Type != MsgIndexReady {
		return fmt.Errorf("%w: unexpected %s", ErrEngine, resp.Type)
	}
	return nil
}

// Search runs query against the current index. Before the first Init it
// fails with ErrNotInitialized; a query without hits returns an empty slice.
func (c *Client) Search(ctx context.Context, query string, filters *Filters) ([]Result, error) {
	resp, err := c.roundTrip(ctx, Request{Type: MsgSearch, Payload: RequestPayload{Query: query, Filters: filters}})
	if err != nil {
		return nil, err
	}
	if resp.Type != MsgSearchResults {
		return nil, fmt.Errorf("%w: unexpected %s", ErrEngine, resp.Type)
	}
	if resp.Results == nil {
		return []Result{}, nil
	}
	return resp.Results, nil
}

// Ready reports whether an index has been built.
func (c *Client) Ready() bool {
	return c.engine.State() == StateReady
}

func (c *Client) State() State {
	return c.engine.State()
}

func (c *Client) roundTrip(ctx context.Context, req Request) (Response, error) {
	reply := c.engine.Post(req)
	select {
	case resp := <-reply:
		if resp.Type == MsgError {
			return resp, responseError(resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func responseError(msg string) error {
	switch msg {
	case errNotInitialized:
		return ErrNotInitialized
	case errEngineClosed:
		return ErrClosed
	}
	return fmt.Errorf("%w: %s", ErrEngine, msg)
}
