package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/pkg/logging"
	"github.com/wms-platform/dropzone-service/pkg/metrics"
)

const profilesCollection = "zone_profiles"

// ZoneProfileRepository stores zone profiles in MongoDB
type ZoneProfileRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// NewZoneProfileRepository creates the repository and ensures its indexes
func NewZoneProfileRepository(ctx context.Context, db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) (*ZoneProfileRepository, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	repo := &ZoneProfileRepository{
		collection: db.Collection(profilesCollection),
		metrics:    m,
		logger:     logger.WithComponent("zone-profile-repository"),
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ZoneProfileRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create zone profile indexes: %w", err)
	}
	return nil
}

// Save persists a profile (upsert by name), keeping the original createdAt
func (r *ZoneProfileRepository) Save(ctx context.Context, profile *domain.ZoneProfile) error {
	start := time.Now()

	now := time.Now().UTC()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}

	filter := bson.M{"name": profile.Name}
	update := bson.M{
		"$set": bson.M{
			"name":        profile.Name,
			"description": profile.Description,
			"zoneList":    profile.ZoneList,
			"mode":        profile.Mode,
			"batchSize":   profile.BatchSize,
			"updatedAt":   profile.UpdatedAt,
		},
		"$setOnInsert": bson.M{"createdAt": profile.CreatedAt},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	r.record(ctx, "upsert", start, err)
	if err != nil {
		return fmt.Errorf("failed to save zone profile %s: %w", profile.Name, err)
	}
	return nil
}

// FindByName retrieves a profile, returning nil when it does not exist
func (r *ZoneProfileRepository) FindByName(ctx context.Context, name string) (*domain.ZoneProfile, error) {
	start := time.Now()

	var profile domain.ZoneProfile
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.record(ctx, "findOne", start, nil)
		return nil, nil
	}
	r.record(ctx, "findOne", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to find zone profile %s: %w", name, err)
	}
	return &profile, nil
}

// FindAll retrieves all profiles ordered by name
func (r *ZoneProfileRepository) FindAll(ctx context.Context) ([]*domain.ZoneProfile, error) {
	start := time.Now()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		r.record(ctx, "find", start, err)
		return nil, fmt.Errorf("failed to list zone profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := make([]*domain.ZoneProfile, 0)
	err = cursor.All(ctx, &profiles)
	r.record(ctx, "find", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to decode zone profiles: %w", err)
	}
	return profiles, nil
}

// Delete removes a profile
func (r *ZoneProfileRepository) Delete(ctx context.Context, name string) error {
	start := time.Now()

	result, err := r.collection.DeleteOne(ctx, bson.M{"name": name})
	r.record(ctx, "deleteOne", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete zone profile %s: %w", name, err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ZoneProfileRepository) record(ctx context.Context, operation string, start time.Time, err error) {
	duration := time.Since(start)
	success := err == nil
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation(profilesCollection, operation, success, duration)
	}
	r.logger.DatabaseQuery(ctx, profilesCollection, operation, duration, success)
}
