package jwtauth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	// Set Gin to test mode to suppress logs
	gin.SetMode(gin.TestMode)
}

// testEnv bundles a config, issuer and router sharing one clock
type testEnv struct {
	clock  *testClock
	cfg    *Config
	codec  *Codec
	issuer *Issuer
	router *gin.Engine
}

func newTestEnv(t *testing.T, opts ...ConfigOption) *testEnv {
	t.Helper()
	clock := newTestClock()
	cfg := mustCreateConfig(t, append([]ConfigOption{WithClock(clock.Now)}, opts...)...)
	codec := NewCodec(cfg)
	env := &testEnv{
		clock:  clock,
		cfg:    cfg,
		codec:  codec,
		issuer: NewIssuer(cfg, codec),
		router: gin.New(),
	}

	echoBody := func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusOK, gin.H{
			"subject": SubjectFromContext(c.Request.Context()),
			"body":    string(body),
		})
	}

	auth := Authenticate(codec)
	env.router.GET("/protected", NewGateChain(cfg, auth).Middleware(), echoBody)
	env.router.PUT("/cafes/:cafeId", NewGateChain(cfg, auth, OwnerFromBody("ownerId")).Middleware(), echoBody)
	env.router.GET("/owners/:ownerId", NewGateChain(cfg, auth, OwnerFromPath("ownerId")).Middleware(), echoBody)
	env.router.POST("/unordered", NewGateChain(cfg, OwnerFromBody("ownerId"), auth).Middleware(), echoBody)
	return env
}

func (e *testEnv) accessToken(t *testing.T, subject string) string {
	t.Helper()
	token, err := e.issuer.IssueAccessToken(subject, nil)
	if err != nil {
		t.Fatalf("Failed to issue access token: %v", err)
	}
	return token
}

func (e *testEnv) do(method, path, authHeader, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not a JSON error envelope: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestAuthenticationGate(t *testing.T) {
	env := newTestEnv(t)
	access := env.accessToken(t, "owner-1")
	refresh, err := env.issuer.IssueRefreshToken("owner-1", nil)
	if err != nil {
		t.Fatalf("Failed to issue refresh token: %v", err)
	}
	notYetValid := signRaw(t, jwt.SigningMethodHS256, testSecret, &tokenClaims{
		Type: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner-1",
			ExpiresAt: jwt.NewNumericDate(env.clock.Now().Add(time.Hour)),
			NotBefore: jwt.NewNumericDate(env.clock.Now().Add(time.Minute)),
		},
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "Valid access token",
			authHeader:     "Bearer " + access,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Missing or invalid authorization header",
		},
		{
			name:           "Wrong scheme",
			authHeader:     "Token " + access,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Missing or invalid authorization header",
		},
		{
			name:           "Lowercase scheme",
			authHeader:     "bearer " + access,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Missing or invalid authorization header",
		},
		{
			name:           "Empty token after prefix",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid access token",
		},
		{
			name:           "Garbage token",
			authHeader:     "Bearer abc.def.ghi",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid access token",
		},
		{
			name:           "Refresh token used as access token",
			authHeader:     "Bearer " + refresh,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Authentication failed",
		},
		{
			name:           "Not before in the future",
			authHeader:     "Bearer " + notYetValid,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Authentication failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, "/protected", tt.authHeader, "")

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK {
				if !bytes.Contains(w.Body.Bytes(), []byte(`"subject":"owner-1"`)) {
					t.Errorf("Handler did not see claims: %s", w.Body.String())
				}
				return
			}

			resp := decodeErrorResponse(t, w)
			if resp.StatusCode != http.StatusUnauthorized || resp.Code != "UNAUTHORIZED" {
				t.Errorf("Unexpected envelope: %+v", resp)
			}
			if resp.Message != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, resp.Message)
			}
		})
	}
}

func TestAuthenticationGateExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.accessToken(t, "owner-1")

	env.clock.Advance(15*time.Minute - time.Second)
	if w := env.do(http.MethodGet, "/protected", "Bearer "+token, ""); w.Code != http.StatusOK {
		t.Fatalf("Token should be accepted just before expiry, got %d", w.Code)
	}

	env.clock.Advance(2 * time.Second)
	w := env.do(http.MethodGet, "/protected", "Bearer "+token, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 after expiry, got %d", w.Code)
	}
	if resp := decodeErrorResponse(t, w); resp.Message != "Access token has expired" {
		t.Errorf("Expected expired message, got %q", resp.Message)
	}
}

func TestOwnerFromBodyGate(t *testing.T) {
	env := newTestEnv(t)
	token := "Bearer " + env.accessToken(t, "O1")

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "Matching owner",
			body:           `{"ownerId":"O1","name":"Cafe"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Different owner",
			body:           `{"ownerId":"O2"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Access denied: Token subject does not match owner ID",
		},
		{
			name:           "Case differs",
			body:           `{"ownerId":"o1"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Access denied: Token subject does not match owner ID",
		},
		{
			name:           "Non-string owner",
			body:           `{"ownerId":1}`,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Access denied: Token subject does not match owner ID",
		},
		{
			name:           "Owner field absent",
			body:           `{"name":"Cafe"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Owner ID is missing in request body",
		},
		{
			name:           "Owner field empty",
			body:           `{"ownerId":""}`,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Owner ID is missing in request body",
		},
		{
			name:           "Owner field null",
			body:           `{"ownerId":null}`,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Owner ID is missing in request body",
		},
		{
			name:           "No body",
			body:           "",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Owner ID is missing in request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPut, "/cafes/c1", token, tt.body)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK {
				var resp map[string]string
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to decode handler response: %v", err)
				}
				if resp["body"] != tt.body {
					t.Errorf("Handler should see the original body %q, got %q", tt.body, resp["body"])
				}
				return
			}
			if resp := decodeErrorResponse(t, w); resp.Message != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, resp.Message)
			}
		})
	}
}

// TestOwnerFromBodyGateNonStringOwner checks JSON numbers and booleans never
// match a subject with the same text
func TestOwnerFromBodyGateNonStringOwner(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		subject string
		body    string
	}{
		{name: "Number", subject: "1", body: `{"ownerId":1}`},
		{name: "Boolean", subject: "true", body: `{"ownerId":true}`},
		{name: "Object", subject: "{}", body: `{"ownerId":{}}`},
		{name: "Array", subject: `["O1"]`, body: `{"ownerId":["O1"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPut, "/cafes/c1", "Bearer "+env.accessToken(t, tt.subject), tt.body)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("Expected status 401, got %d: %s", w.Code, w.Body.String())
			}
			if resp := decodeErrorResponse(t, w); resp.Message != "Access denied: Token subject does not match owner ID" {
				t.Errorf("Expected mismatch message, got %q", resp.Message)
			}
		})
	}
}

func TestOwnerFromBodyGateOversizedBody(t *testing.T) {
	env := newTestEnv(t)
	token := "Bearer " + env.accessToken(t, "O1")

	body := `{"ownerId":"O1","pad":"` + strings.Repeat("x", maxOwnerBodyBytes) + `"}`
	w := env.do(http.MethodPut, "/cafes/c1", token, body)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", w.Code)
	}
	if resp := decodeErrorResponse(t, w); resp.Message != "Owner ID is missing in request body" {
		t.Errorf("Expected missing owner message, got %q", resp.Message)
	}

	w = env.do(http.MethodPut, "/cafes/c1", token, `{"ownerId":"O1","pad":"`+strings.Repeat("x", 1024)+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 under the limit, got %d", w.Code)
	}
}

// TestOwnerGateAuthenticationFirst checks an unauthenticated request never reaches ownership checks
func TestOwnerGateAuthenticationFirst(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/cafes/c1", "", `{"ownerId":"O2"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if resp := decodeErrorResponse(t, w); resp.Message != "Missing or invalid authorization header" {
		t.Errorf("Expected authentication failure to win, got %q", resp.Message)
	}
}

func TestOwnerFromPathGate(t *testing.T) {
	env := newTestEnv(t)
	token := "Bearer " + env.accessToken(t, "O1")

	if w := env.do(http.MethodGet, "/owners/O1", token, ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for own resource, got %d: %s", w.Code, w.Body.String())
	}

	w := env.do(http.MethodGet, "/owners/O2", token, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for another owner's resource, got %d", w.Code)
	}
	if resp := decodeErrorResponse(t, w); resp.Message != "Access denied: Token subject does not match owner ID" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
}

func TestOwnerFromPathGateMissingParam(t *testing.T) {
	cfg := mustCreateConfig(t)
	codec := NewCodec(cfg)
	token, err := NewIssuer(cfg, codec).IssueAccessToken("O1", nil)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	router := gin.New()
	router.GET("/owners", NewGateChain(cfg, Authenticate(codec), OwnerFromPath("ownerId")).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/owners", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if resp := decodeErrorResponse(t, w); resp.Message != "Owner ID parameter is missing" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
}

// TestOwnerGateWithoutAuthentication checks a misordered chain fails closed
func TestOwnerGateWithoutAuthentication(t *testing.T) {
	env := newTestEnv(t)
	token := "Bearer " + env.accessToken(t, "O1")

	w := env.do(http.MethodPost, "/unordered", token, `{"ownerId":"O1"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if resp := decodeErrorResponse(t, w); resp.Message != "Authentication context not found" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
}

func TestGateChainRequestID(t *testing.T) {
	env := newTestEnv(t)
	var seen string
	env.router.GET("/request-id", NewGateChain(env.cfg, Authenticate(env.codec)).Middleware(), func(c *gin.Context) {
		seen, _ = GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/request-id", nil)
	req.Header.Set("Authorization", "Bearer "+env.accessToken(t, "O1"))
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if seen != "req-123" {
		t.Errorf("Expected upstream request id to be kept, got %q", seen)
	}
}

func TestJWTAuth(t *testing.T) {
	cfg := mustCreateConfig(t)
	token, err := NewIssuer(cfg, NewCodec(cfg)).IssueAccessToken("O1", nil)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	router := gin.New()
	router.Use(JWTAuth(cfg))
	router.GET("/me", func(c *gin.Context) {
		claims, _ := GetClaims(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}
