package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
)

const (
	msgNegativeTotalSeats = "Total seats must be non-negative"
	msgSeatsExceedTotal   = "Available seats cannot exceed total seats"
)

func cafeNotFound(cafeID string) error {
	return notFound(fmt.Sprintf("Cafe with id %s not found", cafeID))
}

func (h *Handlers) cafeStoreError(err error, cafeID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return cafeNotFound(cafeID)
	}
	return err
}

func (h *Handlers) nearbyCafes(c *gin.Context) {
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondError(c, badRequest(msgInvalidPayload))
		return
	}

	radius := store.DefaultRadiusKm
	if q.Radius != nil {
		radius = *q.Radius
	}

	cafes, err := h.store.NearbyCafes(c.Request.Context(), *q.Lat, *q.Lng, radius)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]cafeResponse, len(cafes))
	for i := range cafes {
		out[i] = toCafeResponse(&cafes[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) getCafe(c *gin.Context) {
	cafeID := c.Param("cafeId")

	cafe, err := h.store.CafeByID(c.Request.Context(), cafeID)
	if err != nil {
		h.respondError(c, h.cafeStoreError(err, cafeID))
		return
	}

	c.JSON(http.StatusOK, toCafeResponse(cafe))
}

func (h *Handlers) getCafeSeats(c *gin.Context) {
	cafeID := c.Param("cafeId")

	cafe, err := h.store.CafeByID(c.Request.Context(), cafeID)
	if err != nil {
		h.respondError(c, h.cafeStoreError(err, cafeID))
		return
	}

	c.JSON(http.StatusOK, toSeatsResponse(cafe))
}

// createCafe registers a cafe with no seats available yet.
func (h *Handlers) createCafe(c *gin.Context) {
	var in cafeRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, badRequest(msgInvalidPayload))
		return
	}
	if *in.TotalSeats < 0 {
		h.respondError(c, badRequest(msgNegativeTotalSeats))
		return
	}

	now := h.auth.Now()
	cafe := store.Cafe{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Location:           store.Location{Lat: *in.Lat, Lng: *in.Lng},
		Seats:              store.Seats{Total: *in.TotalSeats, Available: 0, LastUpdated: now},
		URL:                in.URL,
		IsManualMonitoring: in.IsManualMonitoring,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.store.CreateCafe(c.Request.Context(), cafe); err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info("cafe created", slog.String("cafe_id", cafe.ID), slog.String("name", cafe.Name))
	c.JSON(http.StatusCreated, toCafeResponse(&cafe))
}

// updateCafe replaces the cafe details; seat availability is reset like on creation.
func (h *Handlers) updateCafe(c *gin.Context) {
	cafeID := c.Param("cafeId")

	var in cafeRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, badRequest(msgInvalidPayload))
		return
	}
	if *in.TotalSeats < 0 {
		h.respondError(c, badRequest(msgNegativeTotalSeats))
		return
	}

	existing, err := h.store.CafeByID(c.Request.Context(), cafeID)
	if err != nil {
		h.respondError(c, h.cafeStoreError(err, cafeID))
		return
	}

	now := h.auth.Now()
	cafe := store.Cafe{
		ID:                 cafeID,
		Name:               in.Name,
		Location:           store.Location{Lat: *in.Lat, Lng: *in.Lng},
		Seats:              store.Seats{Total: *in.TotalSeats, Available: 0, LastUpdated: now},
		URL:                in.URL,
		IsManualMonitoring: in.IsManualMonitoring,
		CreatedAt:          existing.CreatedAt,
		UpdatedAt:          now,
	}

	if err := h.store.UpdateCafe(c.Request.Context(), cafe); err != nil {
		h.respondError(c, h.cafeStoreError(err, cafeID))
		return
	}

	c.JSON(http.StatusOK, toCafeResponse(&cafe))
}

func (h *Handlers) updateCafeSeats(c *gin.Context) {
	cafeID := c.Param("cafeId")

	var in seatsRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, badRequest(msgInvalidPayload))
		return
	}

	cafe, err := h.store.CafeByID(c.Request.Context(), cafeID)
	if err != nil {
		h.respondError(c, h.cafeStoreError(err, cafeID))
		return
	}

	if *in.AvailableSeats > *in.TotalSeats {
		h.respondError(c, badRequest(msgSeatsExceedTotal))
		return
	}

	now := h.auth.Now()
	cafe.Seats = store.Seats{Total: *in.TotalSeats, Available: *in.AvailableSeats, LastUpdated: now}
	cafe.UpdatedAt = now

	if err := h.store.UpdateCafe(c.Request.Context(), *cafe); err != nil {
		h.respondError(c, h.cafeStoreError(err, cafeID))
		return
	}

	c.JSON(http.StatusOK, toSeatsResponse(cafe))
}

func (h *Handlers) deleteCafe(c *gin.Context) {
	cafeID := c.Param("cafeId")

	if err := h.store.DeleteCafe(c.Request.Context(), cafeID); err != nil {
		h.respondError(c, h.cafeStoreError(err, cafeID))
		return
	}

	h.log.Info("cafe deleted", slog.String("cafe_id", cafeID))
	c.JSON(http.StatusOK, true)
}
