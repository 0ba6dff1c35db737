package jwtauth

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// authGate accepts only access-kind bearer tokens
type authGate struct {
	codec *Codec
}

// Authenticate returns the gate that verifies the bearer access token and
// attaches its claims to the request context. It must precede any ownership gate.
func Authenticate(codec *Codec) Gate {
	return &authGate{codec: codec}
}

func (g *authGate) Name() string { return "authenticate" }

func (g *authGate) Check(c *gin.Context) error {
	token, err := extractTokenFromHeader(c.Request)
	if err != nil {
		return err
	}

	claims, err := authenticateAccess(g.codec, token)
	if err != nil {
		return err
	}

	c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
	return nil
}

// authenticateAccess verifies token and maps codec failures to the client
// messages of the authentication gate. Refresh tokens never authenticate a request.
func authenticateAccess(codec *Codec, token string) (*Claims, error) {
	claims, err := codec.Verify(token)
	if err != nil {
		switch CodeOf(err) {
		case ErrMalformedToken:
			return nil, NewValidationError(ErrMalformedToken, msgInvalidAccessToken, err)
		case ErrExpiredToken:
			return nil, NewValidationError(ErrExpiredToken, msgExpiredAccessToken, err)
		case ErrNotYetValid:
			return nil, NewValidationError(ErrNotYetValid, msgAuthFailed, err)
		default:
			return nil, NewValidationError(ErrMalformedToken, msgAuthFailed, err)
		}
	}

	if claims.Kind != KindAccess {
		return nil, NewValidationError(ErrWrongTokenKind, msgAuthFailed, fmt.Errorf("got %s token, want %s", claims.Kind, KindAccess))
	}

	return claims, nil
}
