package search

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// MessageType names a worker protocol message.
type MessageType string

const (
	MsgInitIndex     MessageType = "INIT_INDEX"
	MsgSearch        MessageType = "SEARCH"
	MsgIndexReady    MessageType = "INDEX_READY"
	MsgSearchResults MessageType = "SEARCH_RESULTS"
	MsgError         MessageType = "ERROR"
)

// Request is a message sent to the engine.
type Request struct {
	Type    MessageType    `json:"type"`
	ID      string         `json:"id,omitempty"`
	Payload RequestPayload `json:"payload"`
}

type RequestPayload struct {
	Items   []Record `json:"items,omitempty"`
	Query   string   `json:"query,omitempty"`
	Filters *Filters `json:"filters,omitempty"`
}

// Response answers exactly one Request and echoes its ID.
type Response struct {
	Type    MessageType
	ID      string
	Results []Result
	Count   int
	Error   string
}

func (r Response) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": r.Type}
	if r.ID != "" {
		out["id"] = r.ID
	}
	switch r.Type {
	case MsgSearchResults:
		results := r.Results
		if results == nil {
			results = []Result{}
		}
		out["results"] = results
	case MsgIndexReady:
		out["count"] = r.Count
	case MsgError:
		out["error"] = r.Error
	}
	return json.Marshal(out)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    MessageType `json:"type"`
		ID      string      `json:"id"`
		Results []Result    `json:"results"`
		Count   int         `json:"count"`
		Error   string      `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Response(raw)
	return nil
}

// State is the lifecycle of the engine's index.
type State int32

const (
	StateUninitialized State = iota
	StateIndexing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIndexing:
		return "indexing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

const (
	errNotInitialized = "search index not initialized"
	errEngineClosed   = "search engine closed"

	queueSize = 64
)

type envelope struct {
	req   Request
	reply chan Response
}

// Engine owns a Matcher on a single goroutine. Requests are served strictly
// in the order they were posted, so a SEARCH posted after INIT_INDEX always
// sees the new index.
type Engine struct {
	newMatcher func() Matcher
	matcher    Matcher
	state      atomic.Int32

	mu       sync.RWMutex
	closed   bool
	requests chan envelope
	done     chan struct{}
}

// NewEngine starts the worker. newMatcher builds a fresh matcher for every
// INIT_INDEX; nil selects the fuzzy matcher.
func NewEngine(newMatcher func() Matcher) *Engine {
	if newMatcher == nil {
		newMatcher = func() Matcher { return NewFuzzyMatcher() }
	}
	e := &Engine{
		newMatcher: newMatcher,
		requests:   make(chan envelope, queueSize),
		done:       make(chan struct{}),
	}
	go e.run()
	return e
}

// Post queues req and returns a channel that receives its response. It
// blocks only while the queue is full.
func (e *Engine) Post(req Request) <-chan Response {
	reply := make(chan Response, 1)

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		reply <- Response{Type: MsgError, ID: req.ID, Error: errEngineClosed}
		return reply
	}
	e.requests <- envelope{req: req, reply: reply}
	return reply
}

func (e *Engine) State() State {
	return State(e.state.Load())
}

// Close stops accepting requests, serves the ones already queued and waits
// for the worker to exit.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	close(e.requests)
	e.mu.Unlock()

	<-e.done
}

func (e *Engine) run() {
	defer close(e.done)
	for env := range e.requests {
		resp := e.handle(env.req)
		resp.ID = env.req.ID
		env.reply <- resp
	}
}

func (e *Engine) handle(req Request) Response {
	switch req.Type {
	case MsgInitIndex:
		e.state.Store(int32(StateIndexing))
		started := time.Now()

		m := e.newMatcher()
		m.Index(req.Payload.Items)
		e.matcher = m

		e.state.Store(int32(StateReady))
		log.Printf("[Search] Indexed %d records in %v", len(req.Payload.Items), time.Since(started))
		return Response{Type: MsgIndexReady, Count: len(req.Payload.Items)}

	case MsgSearch:
		if e.matcher == nil {
			return Response{Type: MsgError, Error: errNotInitialized}
		}
		filters := req.Payload.Filters
		if err := filters.Validate(); err != nil {
			return Response{Type: MsgError, Error: err.Error()}
		}
		results := filters.Apply(e.matcher.Search(req.Payload.Query))
		return Response{Type: MsgSearchResults, Results: results}

	default:
		return Response{Type: MsgError, Error: fmt.Sprintf("unknown message type: %s", req.Type)}
	}
}
