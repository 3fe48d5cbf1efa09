package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/chumash/internal/cloud"
)

// CloudController serves the column API that cloud.HTTPBackend talks to.
// The user is always the authenticated one; clients cannot address another
// user's row.
type CloudController struct {
	backend cloud.Backend
}

func NewCloudController(backend cloud.Backend) *CloudController {
	return &CloudController{backend: backend}
}

// ReadColumn handles GET /api/cloud/:table/:column
func (cc *CloudController) ReadColumn(c *gin.Context) {
	value, err := cc.backend.ReadColumn(c.Request.Context(), c.Param("table"), c.Param("column"), GetUserID(c))
	if err != nil {
		cc.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, cloud.ColumnPayload{Value: value})
}

// WriteColumn handles PUT /api/cloud/:table/:column
func (cc *CloudController) WriteColumn(c *gin.Context) {
	var payload cloud.ColumnPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "invalid JSON body")
		return
	}
	if len(payload.Value) == 0 {
		respondBadRequest(c, "value is required")
		return
	}

	err := cc.backend.WriteColumn(c.Request.Context(), c.Param("table"), c.Param("column"), GetUserID(c), payload.Value)
	if err != nil {
		cc.respondBackendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (cc *CloudController) respondBackendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cloud.ErrNoRow):
		respondNotFound(c, "settings row")
	case errors.Is(err, cloud.ErrUnknownTable), errors.Is(err, cloud.ErrUnknownColumn):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, "cloud column")
	}
}
