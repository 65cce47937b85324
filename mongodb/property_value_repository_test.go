package mongodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/pilab-dev/shadow-social/domain"
	"github.com/pilab-dev/shadow-social/mongodb"
	"github.com/pilab-dev/shadow-social/mongodb/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestPropertyValueRepository_Integration(t *testing.T) {
	db := testutil.SetupTestMongoDB(t, "test_social_property_values")
	ctx := context.Background()

	repo, err := mongodb.NewPropertyValueRepository(ctx, db)
	require.NoError(t, err)

	data := &domain.FacebookOAuthData{
		ID:          "42",
		Name:        "Jane Doe",
		AccessToken: "tok",
		ExpiresAt:   time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC),
		Scope:       []string{"email", "pages_show_list"},
		BusinessPages: []domain.FacebookBusinessPageData{
			{ID: "p1", Name: "Bakery", AccessToken: "pt1"},
		},
	}

	_, err = repo.Get(ctx, "1234:facebook")
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)

	require.NoError(t, repo.Save(ctx, "1234:facebook", data))

	got, err := repo.Get(ctx, "1234:facebook")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// The document holds the serialized text.
	var raw bson.M
	require.NoError(t, db.Collection(mongodb.PropertyValuesCollection).
		FindOne(ctx, bson.M{"_id": "1234:facebook"}).Decode(&raw))
	assert.Equal(t, domain.PropertyEditorAlias, raw["editor"])
	assert.Contains(t, raw["value"], `"access_token":"tok"`)

	// Save replaces wholesale.
	replacement := &domain.FacebookOAuthData{ID: "43", AccessToken: "new", ExpiresAt: data.ExpiresAt}
	require.NoError(t, repo.Save(ctx, "1234:facebook", replacement))

	got, err = repo.Get(ctx, "1234:facebook")
	require.NoError(t, err)
	assert.Equal(t, "43", got.ID)
	assert.Empty(t, got.BusinessPages)

	count, err := db.Collection(mongodb.PropertyValuesCollection).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.Delete(ctx, "1234:facebook"))
	assert.ErrorIs(t, repo.Delete(ctx, "1234:facebook"), domain.ErrPropertyNotFound)
}

func TestPropertyValueRepository_MalformedStoredValue(t *testing.T) {
	db := testutil.SetupTestMongoDB(t, "test_social_property_values")
	ctx := context.Background()

	repo, err := mongodb.NewPropertyValueRepository(ctx, db)
	require.NoError(t, err)

	_, err = db.Collection(mongodb.PropertyValuesCollection).InsertOne(ctx, bson.M{
		"_id":    "broken",
		"editor": domain.PropertyEditorAlias,
		"value":  "{not json",
	})
	require.NoError(t, err)

	_, err = repo.Get(ctx, "broken")
	assert.ErrorIs(t, err, domain.ErrMalformedOAuthData)
}
