package jwtauth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxOwnerBodyBytes caps how much of a request body the body gate will read
const maxOwnerBodyBytes = 1 << 20

var (
	// errOutOfOrder is logged when an ownership gate runs without prior authentication
	errOutOfOrder = errors.New("ownership gate evaluated before authentication")

	errNonStringOwner = errors.New("owner id in body is not a string")
)

// ownerGate compares the authenticated subject with an owner id taken from the request.
// Variants differ only in where the candidate id is read from.
type ownerGate struct {
	name       string
	missingMsg string
	candidate  func(c *gin.Context) (value string, present bool, err error)
}

// OwnerFromBody returns the ownership gate that reads field from the JSON request body.
// The body is restored afterwards so the handler can bind it again.
func OwnerFromBody(field string) Gate {
	return &ownerGate{
		name:       "owner_body",
		missingMsg: msgBodyOwnerMissing,
		candidate: func(c *gin.Context) (string, bool, error) {
			return ownerIDFromBody(c, field)
		},
	}
}

// OwnerFromPath returns the ownership gate that reads the named path parameter
func OwnerFromPath(param string) Gate {
	return &ownerGate{
		name:       "owner_path",
		missingMsg: msgPathOwnerMissing,
		candidate: func(c *gin.Context) (string, bool, error) {
			v := c.Param(param)
			return v, v != "", nil
		},
	}
}

func (g *ownerGate) Name() string { return g.name }

// Check uses exact, case-sensitive equality with no normalisation
func (g *ownerGate) Check(c *gin.Context) error {
	claims, ok := GetClaims(c.Request.Context())
	if !ok {
		return NewValidationError(ErrMissingContext, msgMissingContext, errOutOfOrder)
	}

	ownerID, present, err := g.candidate(c)
	if err != nil {
		return NewValidationError(ErrOwnerMismatch, msgOwnerMismatch, err)
	}
	if !present {
		return NewValidationError(ErrMissingOwnerID, g.missingMsg, nil)
	}

	if claims.Subject != ownerID {
		return NewValidationError(ErrOwnerMismatch, msgOwnerMismatch,
			fmt.Errorf("subject %q does not match owner id %q", claims.Subject, ownerID))
	}

	return nil
}

// ownerIDFromBody peeks at a JSON body field without consuming the body.
// A present value that is not a JSON string yields errNonStringOwner.
// Bodies over maxOwnerBodyBytes are treated as carrying no owner id.
func ownerIDFromBody(c *gin.Context, field string) (string, bool, error) {
	if c.Request.Body == nil {
		return "", false, nil
	}

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxOwnerBodyBytes))
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return "", false, nil
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", false, nil
	}

	value, ok := body[field]
	if !ok || string(value) == "null" {
		return "", false, nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", true, fmt.Errorf("%w: %s", errNonStringOwner, value)
	}
	return s, s != "", nil
}
