package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
)

// MongoDB DateTime keeps milliseconds.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

func normalizeOwner(o *store.Owner) {
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	o.CreatedAt = toMS(o.CreatedAt)
	o.UpdatedAt = toMS(o.UpdatedAt)
	if o.Token != nil {
		o.Token.Expiry = toMS(o.Token.Expiry)
	}
	if o.CafeIDs == nil {
		o.CafeIDs = []string{}
	}
}

func (m *Mongo) CreateOwner(ctx context.Context, owner store.Owner) error {
	const op = "store/mongo/CreateOwner"

	normalizeOwner(&owner)
	if _, err := m.owners.InsertOne(ctx, owner); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, store.ErrConflict)
		}
		return fmt.Errorf("%s: insert: %w", op, err)
	}
	return nil
}

func (m *Mongo) OwnerByID(ctx context.Context, id string) (*store.Owner, error) {
	return m.findOwner(ctx, "store/mongo/OwnerByID", bson.D{{Key: "id", Value: id}})
}

func (m *Mongo) OwnerByEmail(ctx context.Context, email string) (*store.Owner, error) {
	return m.findOwner(ctx, "store/mongo/OwnerByEmail",
		bson.D{{Key: "email", Value: strings.ToLower(strings.TrimSpace(email))}})
}

func (m *Mongo) findOwner(ctx context.Context, op string, filter bson.D) (*store.Owner, error) {
	var out store.Owner
	if err := m.owners.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, store.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	if out.Token != nil {
		out.Token.Expiry = out.Token.Expiry.UTC()
	}
	return &out, nil
}

func (m *Mongo) UpdateOwner(ctx context.Context, owner store.Owner) error {
	const op = "store/mongo/UpdateOwner"

	normalizeOwner(&owner)
	res, err := m.owners.ReplaceOne(ctx, bson.D{{Key: "id", Value: owner.ID}}, owner)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, store.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}

func (m *Mongo) DeleteOwner(ctx context.Context, id string) error {
	const op = "store/mongo/DeleteOwner"

	res, err := m.owners.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}
