package domain

import (
	"context"
	"errors"
	"time"
)

var ErrPropertyNotFound = errors.New("property value not found")

// PropertyEditorAlias identifies values written by the Facebook OAuth
// property editor.
const PropertyEditorAlias = "facebook.oauth"

// PropertyValue is the raw stored form of a property editor value.
type PropertyValue struct {
	Key       string    `bson:"_id" json:"key"`
	Editor    string    `bson:"editor" json:"editor"`
	Value     string    `bson:"value" json:"value"` // Serialized FacebookOAuthData
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PropertyValueRepository persists serialized OAuth data keyed by CMS property
// key. Save replaces any existing value.
type PropertyValueRepository interface {
	Save(ctx context.Context, key string, data *FacebookOAuthData) error
	Get(ctx context.Context, key string) (*FacebookOAuthData, error)
	Delete(ctx context.Context, key string) error
}

// PropertyValueCache is a best-effort cache in front of a
// PropertyValueRepository.
type PropertyValueCache interface {
	Set(ctx context.Context, key string, data *FacebookOAuthData) error
	Get(ctx context.Context, key string) (*FacebookOAuthData, bool)
	Delete(ctx context.Context, key string) error
}
