package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Wang-tianhao/cafe-auth-go/jwtauth"
)

const requestIDHeader = "X-Request-ID"

// requestID reads X-Request-ID or generates one, echoes it in the response
// and stores it in the request context where gate chains pick it up.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(jwtauth.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// logging writes one line per request.
func logging(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		rid, _ := jwtauth.GetRequestID(c.Request.Context())
		l.LogAttrs(c.Request.Context(), slog.LevelInfo, "http",
			slog.String("request_id", rid),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("dur", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("subject", jwtauth.SubjectFromContext(c.Request.Context())),
		)
	}
}

// recovery turns a panic into a 500 envelope.
func recovery(l *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		l.Error("panic recovered",
			slog.Any("panic", recovered),
			slog.String("path", c.Request.URL.Path),
		)
		abortWithStatus(c, http.StatusInternalServerError, msgInternal)
	})
}
