package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"polovni_scraper/models"
)

const carCollection = "cars"

// ErrInvalidGroupField rejects a grouping request outside the whitelist.
var ErrInvalidGroupField = errors.New("invalid group_by field")

// groupableFields is the whitelist for AggregateGrouped.
var groupableFields = map[string]bool{
	"make":  true,
	"model": true,
	"year":  true,
}

// MongoStore owns the single cars collection. One instance is created at
// process start and closed at shutdown; upserts are replace-by-key and safe
// under concurrent read traffic.
type MongoStore struct {
	client *mongo.Client
	cars   *mongo.Collection
}

// NewMongoStore connects, pings, and bootstraps the collection indexes:
// a unique index on ad_number and a TTL index on updatedAt so records not
// re-seen within the retention window expire on their own.
func NewMongoStore(ctx context.Context, uri, dbName string, retention time.Duration) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &MongoStore{
		client: client,
		cars:   client.Database(dbName).Collection(carCollection),
	}
	if err := s.ensureIndexes(ctx, retention); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context, retention time.Duration) error {
	_, err := s.cars.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ad_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updatedAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
		},
	})
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Exists reports whether an ad number is already stored.
func (s *MongoStore) Exists(ctx context.Context, adNumber int) (bool, error) {
	count, err := s.cars.CountDocuments(ctx, bson.M{"ad_number": adNumber}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByLink is the secondary lookup by the path-relative ad link.
func (s *MongoStore) GetByLink(ctx context.Context, link string) (*models.Car, error) {
	var car models.Car
	err := s.cars.FindOne(ctx, bson.M{"link": link}).Decode(&car)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// Upsert replaces the record keyed by ad_number, or inserts it. createdAt is
// written only on insert; re-applying the same record only moves updatedAt.
func (s *MongoStore) Upsert(ctx context.Context, car *models.Car) error {
	raw, err := bson.Marshal(car)
	if err != nil {
		return err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return err
	}
	createdAt := car.CreatedAt
	delete(doc, "createdAt")
	doc["updatedAt"] = time.Now().UTC()

	_, err = s.cars.UpdateOne(ctx,
		bson.M{"ad_number": car.AdNumber},
		bson.M{
			"$set":         doc,
			"$setOnInsert": bson.M{"createdAt": createdAt},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// BulkLightUpdate refreshes link and updatedAt for ads already known, in a
// single batched write. A lightweight refresh keeps a still-listed ad alive
// past the TTL without paying for a detail-page fetch. Empty input is a
// no-op.
func (s *MongoStore) BulkLightUpdate(ctx context.Context, shorts []models.CarShortInfo) (int64, error) {
	if len(shorts) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(shorts))
	for _, short := range shorts {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"ad_number": short.AdNumber}).
			SetUpdate(bson.M{"$set": bson.M{"link": short.Link, "updatedAt": now}}))
	}

	result, err := s.cars.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// Query streams raw documents matching a compiled filter.
func (s *MongoStore) Query(ctx context.Context, filter bson.M) (*mongo.Cursor, error) {
	return s.cars.Find(ctx, filter)
}

// Find decodes every match into the domain model.
func (s *MongoStore) Find(ctx context.Context, filter bson.M) ([]models.Car, error) {
	cursor, err := s.cars.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cars []models.Car
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

// CarGroup is one bucket of the grouped aggregation.
type CarGroup struct {
	Make  string       `bson:"make,omitempty" json:"make,omitempty"`
	Model string       `bson:"model,omitempty" json:"model,omitempty"`
	Year  int          `bson:"year,omitempty" json:"year,omitempty"`
	Count int          `bson:"count" json:"count"`
	Cars  []models.Car `bson:"cars" json:"cars"`
}

// AggregateGrouped buckets matching records by the requested fields and
// drops buckets smaller than minCount. Only make, model and year may be
// grouped on; anything else is ErrInvalidGroupField.
func (s *MongoStore) AggregateGrouped(ctx context.Context, groupBy []string, filter bson.M, minCount int) ([]CarGroup, error) {
	if len(groupBy) == 0 {
		return nil, fmt.Errorf("%w: group_by is empty", ErrInvalidGroupField)
	}
	for _, field := range groupBy {
		if !groupableFields[field] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidGroupField, field)
		}
	}

	groupID := bson.M{}
	project := bson.M{"_id": 0, "count": 1, "cars": 1}
	for _, field := range groupBy {
		groupID[field] = "$" + field
		project[field] = "$_id." + field
	}

	pipeline := mongo.Pipeline{}
	if len(filter) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: filter}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   groupID,
			"count": bson.M{"$sum": 1},
			"cars":  bson.M{"$push": "$$ROOT"},
		}}},
		bson.D{{Key: "$match", Value: bson.M{"count": bson.M{"$gte": minCount}}}},
		bson.D{{Key: "$project", Value: project}},
	)

	cursor, err := s.cars.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []CarGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// MakesAndModels returns the distinct make to model-set mapping for faceted
// navigation.
func (s *MongoStore) MakesAndModels(ctx context.Context) (map[string][]string, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    "$make",
			"models": bson.M{"$addToSet": "$model"},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":    0,
			"make":   "$_id",
			"models": 1,
		}}},
	}

	cursor, err := s.cars.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Make   string   `bson:"make"`
		Models []string `bson:"models"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(rows))
	for _, row := range rows {
		out[row.Make] = row.Models
	}
	return out, nil
}
