package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
)

// geoPoint is a GeoJSON Point; coordinates are [lng, lat].
type geoPoint struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"`
}

type seatsDoc struct {
	Total       int       `bson:"total_seats"`
	Available   int       `bson:"available_seats"`
	LastUpdated time.Time `bson:"last_updated"`
}

// cafeDoc is the stored form of store.Cafe.
type cafeDoc struct {
	ID                 string    `bson:"id"`
	Name               string    `bson:"name"`
	Location           geoPoint  `bson:"location"`
	Seats              seatsDoc  `bson:"seat_availability"`
	URL                string    `bson:"url"`
	IsManualMonitoring bool      `bson:"is_manual_monitoring"`
	CreatedAt          time.Time `bson:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

func toCafeDoc(c store.Cafe) cafeDoc {
	return cafeDoc{
		ID:   c.ID,
		Name: c.Name,
		Location: geoPoint{
			Type:        "Point",
			Coordinates: [2]float64{c.Location.Lng, c.Location.Lat},
		},
		Seats: seatsDoc{
			Total:       c.Seats.Total,
			Available:   c.Seats.Available,
			LastUpdated: toMS(c.Seats.LastUpdated),
		},
		URL:                c.URL,
		IsManualMonitoring: c.IsManualMonitoring,
		CreatedAt:          toMS(c.CreatedAt),
		UpdatedAt:          toMS(c.UpdatedAt),
	}
}

func (d cafeDoc) toCafe() store.Cafe {
	return store.Cafe{
		ID:   d.ID,
		Name: d.Name,
		Location: store.Location{
			Lat: d.Location.Coordinates[1],
			Lng: d.Location.Coordinates[0],
		},
		Seats: store.Seats{
			Total:       d.Seats.Total,
			Available:   d.Seats.Available,
			LastUpdated: d.Seats.LastUpdated.UTC(),
		},
		URL:                d.URL,
		IsManualMonitoring: d.IsManualMonitoring,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

func (m *Mongo) CreateCafe(ctx context.Context, cafe store.Cafe) error {
	const op = "store/mongo/CreateCafe"

	if _, err := m.cafes.InsertOne(ctx, toCafeDoc(cafe)); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, store.ErrConflict)
		}
		return fmt.Errorf("%s: insert: %w", op, err)
	}
	return nil
}

func (m *Mongo) CafeByID(ctx context.Context, id string) (*store.Cafe, error) {
	const op = "store/mongo/CafeByID"

	var doc cafeDoc
	if err := m.cafes.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, store.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cafe := doc.toCafe()
	return &cafe, nil
}

func (m *Mongo) UpdateCafe(ctx context.Context, cafe store.Cafe) error {
	const op = "store/mongo/UpdateCafe"

	res, err := m.cafes.ReplaceOne(ctx, bson.D{{Key: "id", Value: cafe.ID}}, toCafeDoc(cafe))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}

func (m *Mongo) DeleteCafe(ctx context.Context, id string) error {
	const op = "store/mongo/DeleteCafe"

	res, err := m.cafes.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return nil
}

// NearbyCafes uses $nearSphere on the 2dsphere index; results come back nearest first.
func (m *Mongo) NearbyCafes(ctx context.Context, lat, lng, radiusKm float64) ([]store.Cafe, error) {
	const op = "store/mongo/NearbyCafes"

	filter := bson.D{{Key: "location", Value: bson.D{
		{Key: "$nearSphere", Value: bson.D{
			{Key: "$geometry", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{lng, lat}},
			}},
			{Key: "$maxDistance", Value: radiusKm * 1000},
		}},
	}}}

	cur, err := m.cafes.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	out := make([]store.Cafe, 0)
	for cur.Next(ctx) {
		var doc cafeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		out = append(out, doc.toCafe())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return out, nil
}
