package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/cafe-auth-go/jwtauth"
)

const (
	msgInternal           = "Internal server error"
	msgInvalidPayload     = "Invalid request payload"
	msgInvalidCredentials = "Invalid credentials"
)

// httpError carries a status and a client-safe message.
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

func badRequest(msg string) error { return &httpError{status: http.StatusBadRequest, message: msg} }
func notFound(msg string) error   { return &httpError{status: http.StatusNotFound, message: msg} }
func conflict(msg string) error   { return &httpError{status: http.StatusConflict, message: msg} }

func unauthorized(msg string) error {
	return &httpError{status: http.StatusUnauthorized, message: msg}
}

// statusCode turns "Not Found" into "NOT_FOUND".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "INTERNAL_SERVER_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// abortWithStatus writes the error envelope shared with the gate chains.
func abortWithStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, jwtauth.ErrorResponse{
		StatusCode: status,
		Code:       statusCode(status),
		Message:    message,
	})
}

// respondError maps err to the envelope. Unknown errors are logged and hidden.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var he *httpError
	if errors.As(err, &he) {
		abortWithStatus(c, he.status, he.message)
		return
	}

	if jwtauth.CodeOf(err) != "" && jwtauth.CodeOf(err) != jwtauth.ErrSigningFailed {
		c.AbortWithStatusJSON(http.StatusUnauthorized, jwtauth.UnauthorizedResponse(err))
		return
	}

	rid, _ := jwtauth.GetRequestID(c.Request.Context())
	h.log.Error("request failed",
		slog.String("request_id", rid),
		slog.String("path", c.Request.URL.Path),
		slog.String("err", err.Error()),
	)
	abortWithStatus(c, http.StatusInternalServerError, msgInternal)
}
