package jwtauth

import (
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"
)

// bearerPrefix is matched exactly: capital B, single trailing space
const bearerPrefix = "Bearer "

// extractBearer strips the bearer prefix from an Authorization value
func extractBearer(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", NewValidationError(ErrMissingCredential, msgMissingHeader, nil)
	}
	return authHeader[len(bearerPrefix):], nil
}

// extractTokenFromHeader extracts the token from the Authorization header
// Expected format: "Authorization: Bearer <token>"
func extractTokenFromHeader(r *http.Request) (string, error) {
	return extractBearer(r.Header.Get("Authorization"))
}

// extractTokenFromMetadata extracts the token from gRPC metadata
func extractTokenFromMetadata(md metadata.MD) (string, error) {
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", NewValidationError(ErrMissingCredential, msgMissingHeader, nil)
	}
	return extractBearer(values[0])
}
