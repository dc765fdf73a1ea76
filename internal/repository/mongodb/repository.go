package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/repository"
)

const (
	collGoats        = "goats"
	collGoatTypes    = "goat_types"
	collVaccineTypes = "vaccine_types"
	collTargets      = "target_weights"
	collVaccinations = "vaccination_events"
	collBreedings    = "breeding_events"
	collSicknesses   = "sicknesses"
	collFarmEvents   = "farm_events"
	collHerdReports  = "herd_reports"
	collCounters     = "counters"
)

// MongoDBRepository implements repository.Store for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

var _ repository.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects, verifies the connection and ensures indexes exist.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
		now:    time.Now,
	}
	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("mongodb store ready", zap.String("database", dbName))
	return r, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}

	indexes := map[string][]mongo.IndexModel{
		collGoats:        {unique(bson.D{{Key: "tag", Value: 1}})},
		collGoatTypes:    {unique(bson.D{{Key: "name", Value: 1}})},
		collVaccineTypes: {unique(bson.D{{Key: "name", Value: 1}})},
		collTargets: {unique(bson.D{
			{Key: "goat_type_id", Value: 1}, {Key: "sex", Value: 1}, {Key: "age_months", Value: 1},
		})},
		collVaccinations: {unique(bson.D{
			{Key: "goat_id", Value: 1}, {Key: "vaccine_type_id", Value: 1}, {Key: "scheduled_date", Value: 1},
		})},
		collBreedings:   {{Keys: bson.D{{Key: "doe_id", Value: 1}}}},
		collSicknesses:  {{Keys: bson.D{{Key: "goat_id", Value: 1}, {Key: "status", Value: 1}}}},
		collHerdReports: {unique(bson.D{{Key: "date", Value: 1}})},
	}

	for name, idx := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// nextID allocates the next integer identifier of a collection.
func (r *MongoDBRepository) nextID(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.db.Collection(collCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate id for %s: %w", collection, err)
	}
	return counter.Seq, nil
}

// findAll decodes every document matching filter into out.
func (r *MongoDBRepository) findAll(ctx context.Context, collection string, filter any, sort bson.D, out any) error {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cursor, err := r.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("query %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

// findOne decodes a single document, translating a miss into repository.ErrNotFound.
func (r *MongoDBRepository) findOne(ctx context.Context, collection string, filter any, out any) error {
	err := r.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query %s: %w", collection, err)
	}
	return nil
}

// upsertReturning applies update with upsert and decodes the resulting document into out.
func (r *MongoDBRepository) upsertReturning(ctx context.Context, collection string, filter, update any, out any) error {
	err := r.db.Collection(collection).FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(out)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("upsert %s: %w", collection, repository.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("upsert %s: %w", collection, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
