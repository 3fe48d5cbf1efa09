package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/chumash/internal/database"
	"github.com/mrlokans/chumash/internal/search"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// IndexState reports the lifecycle of the search index.
type IndexState interface {
	State() search.State
}

type HealthController struct {
	db      *database.Database
	version string
	index   IndexState
}

// NewHealthController creates the health endpoint. index may be nil.
func NewHealthController(db *database.Database, version string, index IndexState) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
		index:   index,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// An index that is still building does not make the service unhealthy
	if h.index != nil {
		checks["search_index"] = h.index.State().String()
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
