package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pilab-dev/shadow-social/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PropertyValueRepository implements domain.PropertyValueRepository. Each
// document holds the serialized OAuth data as text, the way the CMS stores
// property editor values.
type PropertyValueRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewPropertyValueRepository creates the repository and ensures its indexes.
func NewPropertyValueRepository(ctx context.Context, db *mongo.Database) (*PropertyValueRepository, error) {
	repo := &PropertyValueRepository{
		collection: db.Collection(PropertyValuesCollection),
		now:        time.Now,
	}

	if err := repo.createIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create property_values indexes")
	}

	return repo, nil
}

func (r *PropertyValueRepository) createIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "editor", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes for %s collection: %w", PropertyValuesCollection, err)
	}

	return nil
}

// Save replaces the stored value for key.
func (r *PropertyValueRepository) Save(ctx context.Context, key string, data *domain.FacebookOAuthData) error {
	value, err := data.Serialize()
	if err != nil {
		return err
	}

	doc := domain.PropertyValue{
		Key:       key,
		Editor:    domain.PropertyEditorAlias,
		Value:     value,
		UpdatedAt: r.now().UTC(),
	}

	_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("property", key).Msg("Error saving property value")
		return fmt.Errorf("failed to save property value: %w", err)
	}

	return nil
}

// Get loads and deserializes the value for key.
func (r *PropertyValueRepository) Get(ctx context.Context, key string) (*domain.FacebookOAuthData, error) {
	var doc domain.PropertyValue
	if err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPropertyNotFound
		}

		return nil, fmt.Errorf("failed to get property value: %w", err)
	}

	return domain.DeserializeFacebookOAuthData(doc.Value)
}

// Delete removes the value for key.
func (r *PropertyValueRepository) Delete(ctx context.Context, key string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("failed to delete property value: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPropertyNotFound
	}

	return nil
}

var _ domain.PropertyValueRepository = (*PropertyValueRepository)(nil)
