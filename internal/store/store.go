// Package store defines owner and cafe records and the storage contract
// shared by the memory and mongo implementations.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means the record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint (owner email, record id) was violated.
	ErrConflict = errors.New("conflict")
)

// DefaultRadiusKm is used by nearby searches when no radius is given.
const DefaultRadiusKm = 3.0

// Token is the latest access token handed to an owner and its expiry.
type Token struct {
	AccessToken string    `bson:"access_token" json:"accessToken"`
	Expiry      time.Time `bson:"expiry" json:"expiry"`
}

// Owner is a cafe owner account. ID is the subject of every token issued to the owner.
type Owner struct {
	ID           string    `bson:"id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Token        *Token    `bson:"token,omitempty"`
	CafeIDs      []string  `bson:"cafe_ids"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// Location is a WGS84 point.
type Location struct {
	Lat float64
	Lng float64
}

// Seats is the live seat availability of a cafe.
type Seats struct {
	Total       int
	Available   int
	LastUpdated time.Time
}

// Cafe is a cafe listing.
type Cafe struct {
	ID                 string
	Name               string
	Location           Location
	Seats              Seats
	URL                string
	IsManualMonitoring bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OwnerStore persists owners.
type OwnerStore interface {
	// CreateOwner inserts a new owner. Duplicate id or email returns ErrConflict.
	CreateOwner(ctx context.Context, owner Owner) error
	// OwnerByID returns ErrNotFound when absent.
	OwnerByID(ctx context.Context, id string) (*Owner, error)
	// OwnerByEmail returns ErrNotFound when absent.
	OwnerByEmail(ctx context.Context, email string) (*Owner, error)
	// UpdateOwner replaces the stored owner with the same id. ErrNotFound when absent.
	UpdateOwner(ctx context.Context, owner Owner) error
	// DeleteOwner returns ErrNotFound when absent.
	DeleteOwner(ctx context.Context, id string) error
}

// CafeStore persists cafes.
type CafeStore interface {
	// CreateCafe inserts a new cafe. Duplicate id returns ErrConflict.
	CreateCafe(ctx context.Context, cafe Cafe) error
	// CafeByID returns ErrNotFound when absent.
	CafeByID(ctx context.Context, id string) (*Cafe, error)
	// UpdateCafe replaces the stored cafe with the same id. ErrNotFound when absent.
	UpdateCafe(ctx context.Context, cafe Cafe) error
	// DeleteCafe returns ErrNotFound when absent.
	DeleteCafe(ctx context.Context, id string) error
	// NearbyCafes returns cafes within radiusKm of (lat, lng), nearest first.
	NearbyCafes(ctx context.Context, lat, lng, radiusKm float64) ([]Cafe, error)
}

// Store is the full storage contract used by the API.
type Store interface {
	OwnerStore
	CafeStore
	// Close releases connections held by the store.
	Close(ctx context.Context) error
}
