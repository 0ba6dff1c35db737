package api

import (
	"time"

	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
	"github.com/Wang-tianhao/cafe-auth-go/jwtauth"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateOwnerRequest struct {
	CafeIDs []string `json:"cafeIds" binding:"required,dive,uuid"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// cafeRequest is used for create and full update. OwnerID is only read by
// the ownership gate on update routes.
type cafeRequest struct {
	OwnerID            string   `json:"ownerId"`
	Name               string   `json:"name" binding:"required"`
	Lat                *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng                *float64 `json:"lng" binding:"required,min=-180,max=180"`
	TotalSeats         *int     `json:"totalSeats" binding:"required"`
	URL                string   `json:"url" binding:"required,url"`
	IsManualMonitoring bool     `json:"isManualMonitoring"`
}

type seatsRequest struct {
	OwnerID        string `json:"ownerId"`
	TotalSeats     *int   `json:"totalSeats" binding:"required,min=0"`
	AvailableSeats *int   `json:"availableSeats" binding:"required,min=0"`
}

type nearbyQuery struct {
	Lat    *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lng    *float64 `form:"lng" binding:"required,min=-180,max=180"`
	Radius *float64 `form:"radius" binding:"omitempty,min=0.1,max=30"`
}

type ownerResponse struct {
	OwnerID string   `json:"ownerId"`
	Email   string   `json:"email"`
	CafeIDs []string `json:"cafeIds"`
}

type ownerWithTokensResponse struct {
	ownerResponse
	jwtauth.TokenPair
}

type deleteResponse struct {
	Success bool `json:"success"`
}

type cafeResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Lat                float64 `json:"lat"`
	Lng                float64 `json:"lng"`
	TotalSeats         int     `json:"totalSeats"`
	AvailableSeats     int     `json:"availableSeats"`
	LastUpdated        string  `json:"lastUpdated,omitempty"`
	URL                string  `json:"url"`
	IsManualMonitoring bool    `json:"isManualMonitoring"`
}

type seatsResponse struct {
	ID             string `json:"id"`
	TotalSeats     int    `json:"totalSeats"`
	AvailableSeats int    `json:"availableSeats"`
	LastUpdated    string `json:"lastUpdated,omitempty"`
}

func toOwnerResponse(o *store.Owner) ownerResponse {
	cafeIDs := o.CafeIDs
	if cafeIDs == nil {
		cafeIDs = []string{}
	}
	return ownerResponse{OwnerID: o.ID, Email: o.Email, CafeIDs: cafeIDs}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func toCafeResponse(c *store.Cafe) cafeResponse {
	return cafeResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Lat:                c.Location.Lat,
		Lng:                c.Location.Lng,
		TotalSeats:         c.Seats.Total,
		AvailableSeats:     c.Seats.Available,
		LastUpdated:        formatTime(c.Seats.LastUpdated),
		URL:                c.URL,
		IsManualMonitoring: c.IsManualMonitoring,
	}
}

func toSeatsResponse(c *store.Cafe) seatsResponse {
	return seatsResponse{
		ID:             c.ID,
		TotalSeats:     c.Seats.Total,
		AvailableSeats: c.Seats.Available,
		LastUpdated:    formatTime(c.Seats.LastUpdated),
	}
}
