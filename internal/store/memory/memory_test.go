package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
)

func newOwner(id, email string) store.Owner {
	return store.Owner{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		CafeIDs:      []string{"c1"},
		CreatedAt:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestOwners_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateOwner(ctx, newOwner("o1", "a@example.com")))

	got, err := s.OwnerByID(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, "a@example.com", got.Email)

	got, err = s.OwnerByEmail(ctx, "A@Example.com")
	require.NoError(t, err)
	require.Equal(t, "o1", got.ID)

	got.CafeIDs = []string{"c1", "c2"}
	got.Token = &store.Token{AccessToken: "tok", Expiry: time.Date(2024, 3, 1, 0, 15, 0, 0, time.UTC)}
	require.NoError(t, s.UpdateOwner(ctx, *got))

	updated, err := s.OwnerByID(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, []string{"c1", "c2"}, updated.CafeIDs)
	require.Equal(t, "tok", updated.Token.AccessToken)

	require.NoError(t, s.DeleteOwner(ctx, "o1"))
	_, err = s.OwnerByID(ctx, "o1")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.OwnerByEmail(ctx, "a@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOwners_Conflicts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateOwner(ctx, newOwner("o1", "a@example.com")))
	require.NoError(t, s.CreateOwner(ctx, newOwner("o2", "b@example.com")))

	require.ErrorIs(t, s.CreateOwner(ctx, newOwner("o1", "c@example.com")), store.ErrConflict)
	require.ErrorIs(t, s.CreateOwner(ctx, newOwner("o3", "a@example.com")), store.ErrConflict)

	moved := newOwner("o2", "a@example.com")
	require.ErrorIs(t, s.UpdateOwner(ctx, moved), store.ErrConflict)
}

func TestOwners_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.ErrorIs(t, s.UpdateOwner(ctx, newOwner("ghost", "g@example.com")), store.ErrNotFound)
	require.ErrorIs(t, s.DeleteOwner(ctx, "ghost"), store.ErrNotFound)
}

// TestOwners_Isolation checks callers cannot mutate stored records through returned values.
func TestOwners_Isolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateOwner(ctx, newOwner("o1", "a@example.com")))

	got, err := s.OwnerByID(ctx, "o1")
	require.NoError(t, err)
	got.CafeIDs[0] = "mutated"

	again, err := s.OwnerByID(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, []string{"c1"}, again.CafeIDs)
}

func TestCafes_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	cafe := store.Cafe{ID: "c1", Name: "Blue Bottle", Location: store.Location{Lat: 37.7749, Lng: -122.4194}, Seats: store.Seats{Total: 20}}
	require.NoError(t, s.CreateCafe(ctx, cafe))
	require.ErrorIs(t, s.CreateCafe(ctx, cafe), store.ErrConflict)

	got, err := s.CafeByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "Blue Bottle", got.Name)

	got.Seats.Available = 5
	require.NoError(t, s.UpdateCafe(ctx, *got))
	got, err = s.CafeByID(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 5, got.Seats.Available)

	require.NoError(t, s.DeleteCafe(ctx, "c1"))
	_, err = s.CafeByID(ctx, "c1")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.DeleteCafe(ctx, "c1"), store.ErrNotFound)
	require.ErrorIs(t, s.UpdateCafe(ctx, cafe), store.ErrNotFound)
}

func TestNearbyCafes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()

	// San Francisco downtown and surroundings.
	cafes := []store.Cafe{
		{ID: "near", Location: store.Location{Lat: 37.7750, Lng: -122.4195}},
		{ID: "mid", Location: store.Location{Lat: 37.7900, Lng: -122.4194}},
		{ID: "oakland", Location: store.Location{Lat: 37.8044, Lng: -122.2712}},
	}
	for _, c := range cafes {
		require.NoError(t, s.CreateCafe(ctx, c))
	}

	got, err := s.NearbyCafes(ctx, 37.7749, -122.4194, store.DefaultRadiusKm)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "near", got[0].ID)
	require.Equal(t, "mid", got[1].ID)

	got, err = s.NearbyCafes(ctx, 37.7749, -122.4194, 20)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "oakland", got[2].ID)

	got, err = s.NearbyCafes(ctx, 0, 0, 1)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	sf := store.Location{Lat: 37.7749, Lng: -122.4194}
	la := store.Location{Lat: 34.0522, Lng: -118.2437}

	require.InDelta(t, 559, distanceKm(sf, la), 5)
	require.InDelta(t, 0, distanceKm(sf, sf), 1e-9)
}
