package jwtauth

import "context"

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const (
	claimsContextKey    contextKey = "github.com/Wang-tianhao/cafe-auth-go/jwtauth:claims"
	requestIDContextKey contextKey = "github.com/Wang-tianhao/cafe-auth-go/jwtauth:request_id"
)

// WithClaims stores verified claims in the request context.
// The context dies with the request; claims are never shared or cached beyond it.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaims retrieves verified claims from the request context.
// Returns nil, false if claims are not present or have wrong type.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// SubjectFromContext returns the authenticated subject, or "" when the request
// was not authenticated
func SubjectFromContext(ctx context.Context) string {
	if claims, ok := GetClaims(ctx); ok {
		return claims.Subject
	}
	return ""
}

// WithRequestID stores a request ID in context for correlation
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}
