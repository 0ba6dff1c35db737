package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// refreshToken exchanges a refresh token from the body for a new pair.
// Nothing is persisted and the presented token is not revoked.
func (h *Handlers) refreshToken(c *gin.Context) {
	var in refreshRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, badRequest(msgInvalidPayload))
		return
	}

	pair, err := h.refresh.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}
