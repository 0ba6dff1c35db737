// Package mongo implements store.Store on MongoDB.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
)

const (
	ownersCollection = "owners"
	cafesCollection  = "cafes"
	defaultDBName    = "cafes"
)

var _ store.Store = (*Mongo)(nil)

// Mongo is a thin adapter over the owners and cafes collections.
type Mongo struct {
	client *mongodriver.Client
	db     *mongodriver.Database
	owners *mongodriver.Collection
	cafes  *mongodriver.Collection
}

// New connects to uri, pings the primary and ensures indexes.
// The database name is taken from the URI path.
func New(ctx context.Context, uri string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(uri))
	m := &Mongo{
		client: cli,
		db:     db,
		owners: db.Collection(ownersCollection),
		cafes:  db.Collection(cafesCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes creates:
//   - owners: unique id, unique email
//   - cafes: unique id, 2dsphere on location for $nearSphere
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	ownerIndexes := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("owner_id_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("owner_email_unique").SetUnique(true),
		},
	}
	if _, err := m.owners.Indexes().CreateMany(ctx, ownerIndexes); err != nil {
		return fmt.Errorf("mongo ensure owner indexes: %w", err)
	}

	cafeIndexes := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("cafe_id_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("cafe_location_2dsphere"),
		},
	}
	if _, err := m.cafes.Indexes().CreateMany(ctx, cafeIndexes); err != nil {
		return fmt.Errorf("mongo ensure cafe indexes: %w", err)
	}

	return nil
}

// databaseFromURI extracts the database name from the URI path,
// falling back to defaultDBName.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
