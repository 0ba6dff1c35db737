package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
	"github.com/Wang-tianhao/cafe-auth-go/jwtauth"
)

// issueFor mints a token pair for the owner and records the access token on it.
func (h *Handlers) issueFor(c *gin.Context, owner *store.Owner) (*jwtauth.TokenPair, error) {
	pair, err := h.issuer.IssuePair(c.Request.Context(), owner.ID, nil)
	if err != nil {
		return nil, err
	}

	now := h.auth.Now()
	owner.Token = &store.Token{
		AccessToken: pair.AccessToken,
		Expiry:      now.Add(time.Duration(pair.ExpiresIn) * time.Second),
	}
	owner.UpdatedAt = now
	return pair, nil
}

func (h *Handlers) createOwner(c *gin.Context) {
	var in credentialsRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, badRequest(msgInvalidPayload))
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := h.store.OwnerByEmail(c.Request.Context(), email); err == nil {
		h.respondError(c, conflict(fmt.Sprintf("Owner with email %s already exists", email)))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.respondError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.bcryptCost)
	if err != nil {
		h.respondError(c, fmt.Errorf("hash password: %w", err))
		return
	}

	owner := store.Owner{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CafeIDs:      []string{},
		CreatedAt:    h.auth.Now(),
	}
	pair, err := h.issueFor(c, &owner)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.CreateOwner(c.Request.Context(), owner); err != nil {
		if errors.Is(err, store.ErrConflict) {
			err = conflict(fmt.Sprintf("Owner with email %s already exists", email))
		}
		h.respondError(c, err)
		return
	}

	h.log.Info("owner created", slog.String("owner_id", owner.ID))
	c.JSON(http.StatusCreated, ownerWithTokensResponse{ownerResponse: toOwnerResponse(&owner), TokenPair: *pair})
}

func (h *Handlers) login(c *gin.Context) {
	var in credentialsRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, badRequest(msgInvalidPayload))
		return
	}

	owner, err := h.store.OwnerByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = unauthorized(msgInvalidCredentials)
		}
		h.respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(in.Password)); err != nil {
		h.respondError(c, unauthorized(msgInvalidCredentials))
		return
	}

	pair, err := h.issueFor(c, owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.store.UpdateOwner(c.Request.Context(), *owner); err != nil {
		h.respondError(c, h.ownerStoreError(err, owner.ID))
		return
	}

	h.log.Info("owner logged in", slog.String("owner_id", owner.ID))
	c.JSON(http.StatusOK, ownerWithTokensResponse{ownerResponse: toOwnerResponse(owner), TokenPair: *pair})
}

func (h *Handlers) getOwner(c *gin.Context) {
	ownerID := c.Param("ownerId")

	owner, err := h.store.OwnerByID(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, h.ownerStoreError(err, ownerID))
		return
	}

	c.JSON(http.StatusOK, toOwnerResponse(owner))
}

// updateOwner replaces the owner's cafe list and issues a fresh token pair.
func (h *Handlers) updateOwner(c *gin.Context) {
	ownerID := c.Param("ownerId")

	var in updateOwnerRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, badRequest(msgInvalidPayload))
		return
	}

	owner, err := h.store.OwnerByID(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, h.ownerStoreError(err, ownerID))
		return
	}

	owner.CafeIDs = in.CafeIDs
	pair, err := h.issueFor(c, owner)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.store.UpdateOwner(c.Request.Context(), *owner); err != nil {
		h.respondError(c, h.ownerStoreError(err, ownerID))
		return
	}

	c.JSON(http.StatusOK, ownerWithTokensResponse{ownerResponse: toOwnerResponse(owner), TokenPair: *pair})
}

func (h *Handlers) deleteOwner(c *gin.Context) {
	ownerID := c.Param("ownerId")

	if err := h.store.DeleteOwner(c.Request.Context(), ownerID); err != nil {
		h.respondError(c, h.ownerStoreError(err, ownerID))
		return
	}

	h.log.Info("owner deleted", slog.String("owner_id", ownerID))
	c.JSON(http.StatusOK, deleteResponse{Success: true})
}

func (h *Handlers) ownerStoreError(err error, ownerID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(fmt.Sprintf("Owner with id %s not found", ownerID))
	}
	return err
}
