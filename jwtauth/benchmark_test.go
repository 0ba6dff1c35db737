package jwtauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// BenchmarkCodecVerify measures signature and expiry checking of an access token
func BenchmarkCodecVerify(b *testing.B) {
	cfg := mustCreateConfig(b)
	codec := NewCodec(cfg)
	token, err := NewIssuer(cfg, codec).IssueAccessToken("owner-1", map[string]any{"tier": "gold"})
	if err != nil {
		b.Fatalf("Failed to issue token: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := codec.Verify(token); err != nil {
			b.Fatalf("Verify failed: %v", err)
		}
	}
}

// BenchmarkIssuePair measures concurrent signing of an access/refresh pair
func BenchmarkIssuePair(b *testing.B) {
	cfg := mustCreateConfig(b)
	issuer := NewIssuer(cfg, NewCodec(cfg))
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := issuer.IssuePair(ctx, "owner-1", nil); err != nil {
			b.Fatalf("IssuePair failed: %v", err)
		}
	}
}

// BenchmarkGateChain measures a full authenticate + path ownership chain
func BenchmarkGateChain(b *testing.B) {
	cfg := mustCreateConfig(b)
	codec := NewCodec(cfg)
	token, err := NewIssuer(cfg, codec).IssueAccessToken("O1", nil)
	if err != nil {
		b.Fatalf("Failed to issue token: %v", err)
	}

	router := gin.New()
	router.GET("/owners/:ownerId", NewGateChain(cfg, Authenticate(codec), OwnerFromPath("ownerId")).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/owners/O1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			b.Fatalf("Expected 200, got %d", w.Code)
		}
	}
}
