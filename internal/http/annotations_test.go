package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/chumash/internal/auth"
	"github.com/mrlokans/chumash/internal/database/annotations"
	"github.com/mrlokans/chumash/internal/entities"
)

func setupAnnotationsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := setupTestDB(t)
	controller := NewAnnotationsController(annotations.NewRepository(db.DB))

	router := gin.New()
	// The X-User header stands in for the auth middleware
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-User"); user != "" {
			c.Set(auth.ContextKeyUserID, user)
		}
		c.Next()
	})
	router.GET("/api/annotations/bookmarks", controller.ListBookmarks)
	router.POST("/api/annotations/bookmarks", controller.AddBookmark)
	router.GET("/api/annotations/bookmarks/tags", controller.BookmarkTags)
	router.PATCH("/api/annotations/bookmarks/:id", controller.UpdateBookmark)
	router.DELETE("/api/annotations/bookmarks/:id", controller.DeleteBookmark)
	router.GET("/api/annotations/highlights", controller.ListHighlights)
	router.POST("/api/annotations/highlights", controller.AddHighlight)
	router.DELETE("/api/annotations/highlights/:id", controller.DeleteHighlight)
	router.GET("/api/annotations/notes", controller.ListNotes)
	router.GET("/api/annotations/notes/shared", controller.ListSharedNotes)
	router.POST("/api/annotations/notes", controller.AddNote)
	router.PATCH("/api/annotations/notes/:id", controller.UpdateNote)
	router.DELETE("/api/annotations/notes/:id", controller.DeleteNote)
	return router
}

// httptestRequest sends a request as the given user.
func httptestRequest(router *gin.Engine, method, path, body, user string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", user)
	router.ServeHTTP(w, req)
	return w
}

func TestAnnotationsController_Bookmarks(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		router := setupAnnotationsRouter(t)
		w := sendJSON(router, "GET", "/api/annotations/bookmarks", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("add, update, list and delete", func(t *testing.T) {
		router := setupAnnotationsRouter(t)

		w := sendJSON(router, "POST", "/api/annotations/bookmarks", `{"pasuk_id":"1-1-1","pasuk_text":"בראשית","note":"פתיחה","tags":["בריאה"]}`)
		require.Equal(t, http.StatusCreated, w.Code)
		var created entities.Bookmark
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, auth.DefaultUserID, created.UserID)

		w = sendJSON(router, "PATCH", "/api/annotations/bookmarks/"+created.ID, `{"note":"עודכן","tags":["א","ב"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = sendJSON(router, "GET", "/api/annotations/bookmarks?pasuk_id=1-1-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		var list []entities.Bookmark
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "עודכן", list[0].Note)

		w = sendJSON(router, "GET", "/api/annotations/bookmarks/tags", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `["א","ב"]`, w.Body.String())

		w = sendJSON(router, "DELETE", "/api/annotations/bookmarks/"+created.ID, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = sendJSON(router, "DELETE", "/api/annotations/bookmarks/"+created.ID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid pasuk id", func(t *testing.T) {
		router := setupAnnotationsRouter(t)

		for _, body := range []string{`{"pasuk_id":"1-1"}`, `{"pasuk_id":"0-1-1"}`, `{}`} {
			w := sendJSON(router, "POST", "/api/annotations/bookmarks", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}

		w := sendJSON(router, "GET", "/api/annotations/bookmarks?pasuk_id=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("users do not see each other's bookmarks", func(t *testing.T) {
		router := setupAnnotationsRouter(t)

		w := httptestRequest(router, "POST", "/api/annotations/bookmarks", `{"pasuk_id":"1-1-2"}`, "alice")
		require.Equal(t, http.StatusCreated, w.Code)
		var created entities.Bookmark
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		w = httptestRequest(router, "GET", "/api/annotations/bookmarks", "", "bob")
		assert.Equal(t, "[]", w.Body.String())

		w = httptestRequest(router, "DELETE", "/api/annotations/bookmarks/"+created.ID, "", "bob")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAnnotationsController_Highlights(t *testing.T) {
	t.Run("defaults the color", func(t *testing.T) {
		router := setupAnnotationsRouter(t)

		w := sendJSON(router, "POST", "/api/annotations/highlights", `{"pasuk_id":"1-1-1","start_index":0,"end_index":6,"highlight_text":"בראשית"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var h entities.Highlight
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
		assert.Equal(t, entities.HighlightColors[0], h.Color)

		w = sendJSON(router, "GET", "/api/annotations/highlights?pasuk_id=1-1-1", "")
		var list []entities.Highlight
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, 1)

		w = sendJSON(router, "DELETE", "/api/annotations/highlights/"+h.ID, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects bad ranges and colors", func(t *testing.T) {
		router := setupAnnotationsRouter(t)

		w := sendJSON(router, "POST", "/api/annotations/highlights", `{"pasuk_id":"1-1-1","start_index":5,"end_index":5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = sendJSON(router, "POST", "/api/annotations/highlights", `{"pasuk_id":"1-1-1","start_index":0,"end_index":2,"color":"#000000"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAnnotationsController_Notes(t *testing.T) {
	t.Run("crud", func(t *testing.T) {
		router := setupAnnotationsRouter(t)

		w := sendJSON(router, "POST", "/api/annotations/notes", `{"pasuk_id":"1-1-3","note_text":"אור ראשון"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		var n entities.Note
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &n))

		w = sendJSON(router, "PATCH", "/api/annotations/notes/"+n.ID, `{"note_text":"אור גנוז","is_shared":true}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &n))
		assert.Equal(t, "אור גנוז", n.NoteText)
		assert.True(t, n.IsShared)

		w = sendJSON(router, "GET", "/api/annotations/notes", "")
		var list []entities.Note
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list, 1)

		w = sendJSON(router, "DELETE", "/api/annotations/notes/"+n.ID, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("note text is required", func(t *testing.T) {
		router := setupAnnotationsRouter(t)
		w := sendJSON(router, "POST", "/api/annotations/notes", `{"pasuk_id":"1-1-3"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("shared notes come from other users only", func(t *testing.T) {
		router := setupAnnotationsRouter(t)

		httptestRequest(router, "POST", "/api/annotations/notes", `{"pasuk_id":"1-1-3","note_text":"משותף","is_shared":true}`, "alice")
		httptestRequest(router, "POST", "/api/annotations/notes", `{"pasuk_id":"1-1-3","note_text":"פרטי"}`, "alice")
		httptestRequest(router, "POST", "/api/annotations/notes", `{"pasuk_id":"1-1-3","note_text":"שלי","is_shared":true}`, "bob")

		w := httptestRequest(router, "GET", "/api/annotations/notes/shared?pasuk_id=1-1-3", "", "bob")
		require.Equal(t, http.StatusOK, w.Code)
		var list []entities.Note
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "משותף", list[0].NoteText)

		w = httptestRequest(router, "GET", "/api/annotations/notes/shared", "", "bob")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
