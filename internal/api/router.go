// Package api exposes the cafe seat REST API over gin. Protected routes are
// wrapped in jwtauth gate chains built once here.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
	"github.com/Wang-tianhao/cafe-auth-go/jwtauth"
)

// Options are the router dependencies.
type Options struct {
	Store      store.Store
	Auth       *jwtauth.Config
	Logger     *slog.Logger
	BasePath   string // e.g. "/api/v1"; empty registers routes at the root
	BcryptCost int
}

// Handlers holds the dependencies shared by all endpoints.
type Handlers struct {
	store      store.Store
	auth       *jwtauth.Config
	issuer     *jwtauth.Issuer
	refresh    *jwtauth.RefreshFlow
	log        *slog.Logger
	bcryptCost int
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	codec := jwtauth.NewCodec(opts.Auth)
	issuer := jwtauth.NewIssuer(opts.Auth, codec)
	h := &Handlers{
		store:      opts.Store,
		auth:       opts.Auth,
		issuer:     issuer,
		refresh:    jwtauth.NewRefreshFlow(opts.Auth, codec, issuer),
		log:        opts.Logger,
		bcryptCost: opts.BcryptCost,
	}

	r := gin.New()
	r.Use(
		recovery(opts.Logger),
		requestID(),
		logging(opts.Logger),
	)
	r.NoRoute(func(c *gin.Context) {
		abortWithStatus(c, http.StatusNotFound, "Route not found")
	})

	r.GET("/health", h.health)

	// Chains are built once and shared by every request on the route.
	authenticate := jwtauth.Authenticate(codec)
	authOnly := jwtauth.NewGateChain(opts.Auth, authenticate).Middleware()
	ownerFromPath := jwtauth.NewGateChain(opts.Auth, authenticate, jwtauth.OwnerFromPath("ownerId")).Middleware()
	ownerFromBody := jwtauth.NewGateChain(opts.Auth, authenticate, jwtauth.OwnerFromBody("ownerId")).Middleware()

	api := r.Group(opts.BasePath)

	// auth
	api.POST("/auth/refresh", h.refreshToken)

	// owners
	api.POST("/owners", h.createOwner)
	api.POST("/owners/login", h.login)
	api.GET("/owners/:ownerId", ownerFromPath, h.getOwner)
	api.PUT("/owners/:ownerId", ownerFromPath, h.updateOwner)
	api.DELETE("/owners/:ownerId", ownerFromPath, h.deleteOwner)

	// cafes
	api.GET("/cafes", h.nearbyCafes)
	api.GET("/cafes/:cafeId", h.getCafe)
	api.GET("/cafes/:cafeId/seats-availability", h.getCafeSeats)
	// Create and delete require a signed-in owner but are not owner-scoped:
	// cafe records carry no owner reference to check against.
	api.POST("/cafes", authOnly, h.createCafe)
	api.PUT("/cafes/:cafeId", ownerFromBody, h.updateCafe)
	api.PUT("/cafes/:cafeId/seats-availability", ownerFromBody, h.updateCafeSeats)
	api.DELETE("/cafes/:cafeId", authOnly, h.deleteCafe)

	return r
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Cafe API is running",
		"timestamp": h.auth.Now().UTC().Format(time.RFC3339Nano),
		"status":    "ok",
	})
}
