package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/chumash/internal/corpus"
	"github.com/mrlokans/chumash/internal/search"
	"github.com/mrlokans/chumash/internal/tasks"
)

const (
	// Time allowed to write a message to the peer.
	wsWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	wsPongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than wsPongWait.
	wsPingPeriod = (wsPongWait * 9) / 10

	// INIT_INDEX carries the whole corpus.
	wsMaxMessageSize = 32 << 20
)

var searchUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     sameHostOrigin,
}

// sameHostOrigin accepts non-browser clients and pages served from the same
// host, on any port.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return strings.EqualFold(u.Hostname(), strings.Split(r.Host, ":")[0])
}

// SearchIndex is the server-wide search index.
type SearchIndex interface {
	Search(ctx context.Context, query string, filters *search.Filters) ([]search.Result, error)
	State() search.State
}

// CorpusBuilder reports and resets the cached search corpus.
type CorpusBuilder interface {
	Progress() []corpus.BookProgress
	Invalidate() error
}

// TaskEnqueuer puts a task on the background queue.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

type SearchController struct {
	index      SearchIndex
	corpus     CorpusBuilder
	tasks      TaskEnqueuer
	sefarim    []int
	newMatcher func() search.Matcher
}

// NewSearchController creates the search endpoints. corpus and tasks may be
// nil, which disables status progress and rebuilds respectively. sefarim
// are the books a rebuild indexes.
func NewSearchController(index SearchIndex, corpus CorpusBuilder, tasks TaskEnqueuer, sefarim []int) *SearchController {
	return &SearchController{
		index:   index,
		corpus:  corpus,
		tasks:   tasks,
		sefarim: sefarim,
		newMatcher: func() search.Matcher {
			return search.NewFuzzyMatcher()
		},
	}
}

type SearchRequest struct {
	Query   string          `json:"query"`
	Filters *search.Filters `json:"filters,omitempty"`
	Limit   int             `json:"limit,omitempty"`
}

type SearchResponse struct {
	Query   string          `json:"query"`
	Total   int             `json:"total"`
	Results []search.Result `json:"results"`
}

// Search handles POST /api/search
func (sc *SearchController) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	if err := req.Filters.Validate(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.Limit < 0 {
		respondBadRequest(c, "limit must not be negative")
		return
	}

	results, err := sc.index.Search(c.Request.Context(), req.Query, req.Filters)
	switch {
	case errors.Is(err, search.ErrNotInitialized):
		respondError(c, http.StatusServiceUnavailable, "index_not_ready", "search index is still being built")
		return
	case err != nil:
		respondInternalError(c, err, "search")
		return
	}

	resp := SearchResponse{Query: req.Query, Total: len(results), Results: results}
	if req.Limit > 0 && len(results) > req.Limit {
		resp.Results = results[:req.Limit]
	}
	c.JSON(http.StatusOK, resp)
}

type SearchStatusResponse struct {
	State    string                `json:"state"`
	Progress []corpus.BookProgress `json:"progress"`
}

// GetStatus handles GET /api/search/status
func (sc *SearchController) GetStatus(c *gin.Context) {
	resp := SearchStatusResponse{
		State:    sc.index.State().String(),
		Progress: []corpus.BookProgress{},
	}
	if sc.corpus != nil {
		resp.Progress = sc.corpus.Progress()
	}
	c.JSON(http.StatusOK, resp)
}

// Rebuild handles POST /api/search/rebuild
// Drops the cached corpus and queues a fresh index build. The current index
// keeps serving until the new one is ready.
func (sc *SearchController) Rebuild(c *gin.Context) {
	if sc.tasks == nil || sc.corpus == nil {
		respondError(c, http.StatusServiceUnavailable, "tasks_disabled", "background tasks are disabled")
		return
	}
	if err := sc.corpus.Invalidate(); err != nil {
		respondInternalError(c, err, "invalidate corpus")
		return
	}
	id, err := sc.tasks.Enqueue(tasks.BuildSearchIndexTask{Sefarim: sc.sefarim})
	if err != nil {
		respondInternalError(c, err, "enqueue index build")
		return
	}
	respondAccepted(c, "index rebuild queued", gin.H{"task_id": id})
}

// Socket handles GET /ws/search
// Each connection gets its own engine and speaks the worker protocol:
// INIT_INDEX and SEARCH requests in, INDEX_READY, SEARCH_RESULTS and ERROR
// responses out, in request order.
func (sc *SearchController) Socket(c *gin.Context) {
	conn, err := searchUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Printf("[Search] WebSocket upgrade failed: %v", err)
		return
	}
	sc.serveSocket(conn)
}

func (sc *SearchController) serveSocket(conn *websocket.Conn) {
	engine := search.NewEngine(sc.newMatcher)
	replies := make(chan (<-chan search.Response), 64)
	written := make(chan struct{})
	go func() {
		defer close(written)
		writeReplies(conn, replies)
	}()

	conn.SetReadLimit(wsMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Search] WebSocket closed: %v", err)
			}
			break
		}

		var req search.Request
		if err := json.Unmarshal(message, &req); err != nil {
			replies <- immediate(search.Response{Type: search.MsgError, Error: "malformed message: " + err.Error()})
			continue
		}
		replies <- engine.Post(req)
	}

	close(replies)
	<-written
	engine.Close()
	conn.Close()
}

// writeReplies writes each reply once it is ready, pinging the peer between
// replies. After a write error it closes the connection and drains replies.
func writeReplies(conn *websocket.Conn, replies <-chan (<-chan search.Response)) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case reply, ok := <-replies:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			resp := <-reply
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(resp); err != nil {
				log.Printf("[Search] WebSocket write failed: %v", err)
				conn.Close()
				for range replies {
				}
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				for range replies {
				}
				return
			}
		}
	}
}

func immediate(resp search.Response) <-chan search.Response {
	ch := make(chan search.Response, 1)
	ch <- resp
	return ch
}
