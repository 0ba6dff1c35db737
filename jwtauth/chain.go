package jwtauth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Gate is a single pass/fail check evaluated before a route handler.
// A failing Check returns an error carrying the client-facing message.
type Gate interface {
	Name() string
	Check(c *gin.Context) error
}

// ErrorResponse is the JSON body written for every rejected request
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// UnauthorizedResponse builds the uniform 401 envelope for err
func UnauthorizedResponse(err error) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    clientMessage(err),
	}
}

// GateChain evaluates gates in order and stops at the first failure.
// A chain is built once at route registration and is safe for concurrent use.
type GateChain struct {
	cfg   *Config
	gates []Gate
}

// NewGateChain creates a chain; gates run in the order given
func NewGateChain(cfg *Config, gates ...Gate) *GateChain {
	return &GateChain{
		cfg:   cfg,
		gates: append([]Gate(nil), gates...),
	}
}

// Evaluate runs the gates against c and returns the first failing gate and its error
func (gc *GateChain) Evaluate(c *gin.Context) (Gate, error) {
	for _, gate := range gc.gates {
		if err := gate.Check(c); err != nil {
			return gate, err
		}
	}
	return nil, nil
}

// Middleware returns the chain as a Gin handler
func (gc *GateChain) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := ensureRequestID(c)
		token, _ := extractTokenFromHeader(c.Request)

		failed, err := gc.Evaluate(c)
		if err != nil {
			logSecurityEvent(gc.cfg.logger, newFailureEvent(failed.Name(), requestID, token, err, time.Since(startTime)))
			gc.cfg.metrics.gateRejected(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, UnauthorizedResponse(err))
			return
		}

		claims, _ := GetClaims(c.Request.Context())
		logSecurityEvent(gc.cfg.logger, newSuccessEvent(gc.stage(), requestID, token, claims, time.Since(startTime)))
		gc.cfg.metrics.gateAllowed()

		c.Next()
	}
}

// stage names the last gate of the chain for success events
func (gc *GateChain) stage() string {
	if len(gc.gates) == 0 {
		return ""
	}
	return gc.gates[len(gc.gates)-1].Name()
}

// ensureRequestID reuses an upstream X-Request-ID or an id already in context,
// generating one otherwise
func ensureRequestID(c *gin.Context) string {
	if id, ok := GetRequestID(c.Request.Context()); ok && id != "" {
		return id
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), requestID))
	return requestID
}

// JWTAuth returns a Gin middleware that only authenticates the bearer access token
func JWTAuth(cfg *Config) gin.HandlerFunc {
	return NewGateChain(cfg, Authenticate(NewCodec(cfg))).Middleware()
}
