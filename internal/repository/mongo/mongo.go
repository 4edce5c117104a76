package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/property-mcp/internal/domain"
	"github.com/Rrens/property-mcp/internal/repository"
)

// Driver is the registry name of this backend
const Driver = "mongo"

const (
	defaultDatabase = "realestate"
	collectionName  = "properties"
)

// Store is the mongo property store. It does not report totals.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type propertyDocument struct {
	ID            string            `bson:"_id"`
	Title         string            `bson:"title"`
	Description   string            `bson:"description,omitempty"`
	Descriptions  map[string]string `bson:"descriptions,omitempty"`
	City          string            `bson:"city"`
	CityKey       string            `bson:"city_key"`
	Address       string            `bson:"address,omitempty"`
	PriceCents    int64             `bson:"price_cents"`
	Status        string            `bson:"status"`
	PropertyType  string            `bson:"property_type"`
	Bedrooms      int               `bson:"bedrooms"`
	Bathrooms     int               `bson:"bathrooms"`
	AreaSqm       float64           `bson:"area_sqm"`
	Features      bson.M            `bson:"features,omitempty"`
	InternalNotes string            `bson:"internal_notes,omitempty"`
	CreatedAt     time.Time         `bson:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at"`
}

// Open connects to the deployment in opts.URL. The database name comes from
// the URL path and defaults to "realestate".
func Open(ctx context.Context, opts repository.Options) (repository.Backend, error) {
	clientOpts := options.Client().ApplyURI(opts.URL)
	if opts.MaxConns > 0 {
		clientOpts.SetMaxPoolSize(uint64(opts.MaxConns))
	}
	if opts.MinConns > 0 {
		clientOpts.SetMinPoolSize(uint64(opts.MinConns))
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	store := &Store{
		client:     client,
		collection: client.Database(databaseName(opts.URL)).Collection(collectionName),
	}

	if err := store.EnsureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

func databaseName(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return defaultDatabase
	}
	name := rest[slash+1:]
	if q := strings.IndexByte(name, '?'); q >= 0 {
		name = name[:q]
	}
	if name == "" {
		return defaultDatabase
	}
	return name
}

// EnsureIndexes creates the query indexes when missing
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "city_key", Value: 1}}},
		{Keys: bson.D{{Key: "price_cents", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "title", Value: 1}, {Key: "address", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := s.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// FindByID retrieves a property by ID
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	var doc propertyDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, repository.Classify("find_by_id", err)
	}
	property, err := doc.toDomain()
	if err != nil {
		return nil, repository.Decoded(err)
	}
	return property, nil
}

// Query returns matching properties. The total is always nil.
func (s *Store) Query(ctx context.Context, filter domain.PropertyFilter, page domain.Page) ([]domain.Property, *int64, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	properties, err := s.find(ctx, buildFilter(filter), findOpts)
	if err != nil {
		return nil, nil, repository.Classify("query", err)
	}
	return properties, nil, nil
}

// QueryByTimeRange returns properties created within [start, end]
func (s *Store) QueryByTimeRange(ctx context.Context, start, end time.Time) ([]domain.Property, error) {
	filter := bson.M{"created_at": bson.M{"$gte": start.UTC(), "$lte": end.UTC()}}
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	properties, err := s.find(ctx, filter, findOpts)
	if err != nil {
		return nil, repository.Classify("query_by_time_range", err)
	}
	return properties, nil
}

// UpsertProperties inserts properties whose id is not stored yet
func (s *Store) UpsertProperties(ctx context.Context, properties []domain.Property) (int, error) {
	if len(properties) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(properties))
	for i := range properties {
		doc := fromDomain(&properties[i])
		fields, err := insertFields(doc)
		if err != nil {
			return 0, err
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetUpdate(bson.M{"$setOnInsert": fields}).
			SetUpsert(true))
	}

	res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert properties: %w", err)
	}
	return int(res.UpsertedCount), nil
}

// Ping verifies the deployment is reachable
func (s *Store) Ping(ctx context.Context) error {
	return repository.Classify("ping", s.client.Ping(ctx, nil))
}

// Close disconnects the client
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Property, error) {
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	properties := []domain.Property{}
	for cursor.Next(ctx) {
		var doc propertyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, repository.Decoded(err)
		}
		property, err := doc.toDomain()
		if err != nil {
			return nil, repository.Decoded(err)
		}
		properties = append(properties, *property)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return properties, nil
}

func buildFilter(filter domain.PropertyFilter) bson.M {
	query := bson.M{}
	if filter.City != nil {
		query["city_key"] = domain.CityKey(*filter.City)
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = int64(*filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			price["$lte"] = int64(*filter.MaxPrice)
		}
		query["price_cents"] = price
	}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.Type != nil {
		query["property_type"] = string(*filter.Type)
	}
	return query
}

// insertFields returns the document without _id, which the upsert takes from the filter
func insertFields(doc propertyDocument) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal property: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal property: %w", err)
	}
	delete(fields, "_id")
	return fields, nil
}

func fromDomain(p *domain.Property) propertyDocument {
	return propertyDocument{
		ID:            p.ID.String(),
		Title:         p.Title,
		Description:   p.Description,
		Descriptions:  p.Descriptions,
		City:          p.City,
		CityKey:       domain.CityKey(p.City),
		Address:       p.Address,
		PriceCents:    int64(p.Price),
		Status:        string(p.Status),
		PropertyType:  string(p.Type),
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		AreaSqm:       p.AreaSqm,
		Features:      bson.M(p.Features),
		InternalNotes: p.InternalNotes,
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func (d *propertyDocument) toDomain() (*domain.Property, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid property id %q: %w", d.ID, err)
	}

	var features map[string]any
	if len(d.Features) > 0 {
		features = make(map[string]any, len(d.Features))
		for k, v := range d.Features {
			features[k] = normalizeScalar(v)
		}
	}

	return &domain.Property{
		ID:            id,
		Title:         d.Title,
		Description:   d.Description,
		Descriptions:  d.Descriptions,
		City:          d.City,
		Address:       d.Address,
		Price:         domain.Money(d.PriceCents),
		Status:        domain.PropertyStatus(d.Status),
		Type:          domain.PropertyType(d.PropertyType),
		Bedrooms:      d.Bedrooms,
		Bathrooms:     d.Bathrooms,
		AreaSqm:       d.AreaSqm,
		Features:      features,
		InternalNotes: d.InternalNotes,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}, nil
}

// normalizeScalar maps bson numeric types onto the types encoding/json produces
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return v
}
