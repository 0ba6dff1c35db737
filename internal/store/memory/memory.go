// Package memory is an in-process store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
)

const earthRadiusKm = 6371.0

var _ store.Store = (*Store)(nil)

// Store keeps owners and cafes in maps guarded by a single RWMutex.
// Records are copied on the way in and out.
type Store struct {
	mu     sync.RWMutex
	owners map[string]store.Owner
	emails map[string]string // email -> owner id
	cafes  map[string]store.Cafe
}

// New returns an empty store.
func New() *Store {
	return &Store{
		owners: make(map[string]store.Owner),
		emails: make(map[string]string),
		cafes:  make(map[string]store.Cafe),
	}
}

func (s *Store) CreateOwner(_ context.Context, owner store.Owner) error {
	const op = "store/memory/CreateOwner"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owners[owner.ID]; ok {
		return fmt.Errorf("%s: id %s: %w", op, owner.ID, store.ErrConflict)
	}
	key := emailKey(owner.Email)
	if _, ok := s.emails[key]; ok {
		return fmt.Errorf("%s: email %s: %w", op, owner.Email, store.ErrConflict)
	}

	s.owners[owner.ID] = copyOwner(owner)
	s.emails[key] = owner.ID
	return nil
}

func (s *Store) OwnerByID(_ context.Context, id string) (*store.Owner, error) {
	const op = "store/memory/OwnerByID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.owners[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	out := copyOwner(owner)
	return &out, nil
}

func (s *Store) OwnerByEmail(_ context.Context, email string) (*store.Owner, error) {
	const op = "store/memory/OwnerByEmail"

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[emailKey(email)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	out := copyOwner(s.owners[id])
	return &out, nil
}

func (s *Store) UpdateOwner(_ context.Context, owner store.Owner) error {
	const op = "store/memory/UpdateOwner"

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.owners[owner.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}

	newKey := emailKey(owner.Email)
	if oldKey := emailKey(prev.Email); newKey != oldKey {
		if _, taken := s.emails[newKey]; taken {
			return fmt.Errorf("%s: email %s: %w", op, owner.Email, store.ErrConflict)
		}
		delete(s.emails, oldKey)
		s.emails[newKey] = owner.ID
	}

	s.owners[owner.ID] = copyOwner(owner)
	return nil
}

func (s *Store) DeleteOwner(_ context.Context, id string) error {
	const op = "store/memory/DeleteOwner"

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.owners[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	delete(s.emails, emailKey(owner.Email))
	delete(s.owners, id)
	return nil
}

func (s *Store) CreateCafe(_ context.Context, cafe store.Cafe) error {
	const op = "store/memory/CreateCafe"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cafes[cafe.ID]; ok {
		return fmt.Errorf("%s: id %s: %w", op, cafe.ID, store.ErrConflict)
	}
	s.cafes[cafe.ID] = cafe
	return nil
}

func (s *Store) CafeByID(_ context.Context, id string) (*store.Cafe, error) {
	const op = "store/memory/CafeByID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	cafe, ok := s.cafes[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return &cafe, nil
}

func (s *Store) UpdateCafe(_ context.Context, cafe store.Cafe) error {
	const op = "store/memory/UpdateCafe"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cafes[cafe.ID]; !ok {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	s.cafes[cafe.ID] = cafe
	return nil
}

func (s *Store) DeleteCafe(_ context.Context, id string) error {
	const op = "store/memory/DeleteCafe"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cafes[id]; !ok {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	delete(s.cafes, id)
	return nil
}

// NearbyCafes scans all cafes and keeps those within radiusKm by great-circle distance.
func (s *Store) NearbyCafes(_ context.Context, lat, lng, radiusKm float64) ([]store.Cafe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		cafe store.Cafe
		dist float64
	}

	from := store.Location{Lat: lat, Lng: lng}
	hits := make([]hit, 0)
	for _, cafe := range s.cafes {
		if d := distanceKm(from, cafe.Location); d <= radiusKm {
			hits = append(hits, hit{cafe: cafe, dist: d})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].cafe.ID < hits[j].cafe.ID
	})

	out := make([]store.Cafe, len(hits))
	for i, h := range hits {
		out[i] = h.cafe
	}
	return out, nil
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// distanceKm is the haversine distance between two points.
func distanceKm(a, b store.Location) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func copyOwner(o store.Owner) store.Owner {
	if o.Token != nil {
		t := *o.Token
		o.Token = &t
	}
	o.CafeIDs = append([]string(nil), o.CafeIDs...)
	return o
}
