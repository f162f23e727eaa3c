package records

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novora/compliance-api/internal/system/kv"
)

type testConsent struct {
	UserID        string `json:"userId" validate:"required"`
	PolicyVersion string `json:"policyVersion" validate:"required"`
	ConsentStatus string `json:"consentStatus" validate:"required,oneof=granted withdrawn"`
}

func consentTestKey(c *testConsent) string {
	return "consent:" + c.UserID + ":" + c.PolicyVersion
}

func TestRepositorySaveRejectsInvalidEntity(t *testing.T) {
	store := kv.NewMemoryStore()
	repo := NewRepository[testConsent](store, "consent record", consentTestKey)

	err := repo.Save(context.Background(), &testConsent{UserID: "u1", PolicyVersion: "1.0"})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "consent record", validationErr.Entity)
	require.Len(t, validationErr.Fields, 1)
	assert.Equal(t, "ConsentStatus", validationErr.Fields[0].Field)
	assert.Equal(t, "required", validationErr.Fields[0].Constraint)

	// Nothing reached the store.
	keys, storeErr := store.Keys(context.Background(), "consent:")
	require.NoError(t, storeErr)
	assert.Empty(t, keys)
}

func TestRepositorySaveRejectsConstraintViolation(t *testing.T) {
	repo := NewRepository[testConsent](kv.NewMemoryStore(), "consent record", consentTestKey)

	err := repo.Save(context.Background(), &testConsent{
		UserID:        "u1",
		PolicyVersion: "1.0",
		ConsentStatus: "maybe",
	})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Fields, 1)
	assert.Equal(t, "oneof", validationErr.Fields[0].Constraint)
}

func TestRepositorySaveAndGet(t *testing.T) {
	repo := NewRepository[testConsent](kv.NewMemoryStore(), "consent record", consentTestKey)
	ctx := context.Background()

	record := &testConsent{UserID: "u1", PolicyVersion: "1.0", ConsentStatus: "granted"}
	require.NoError(t, repo.Save(ctx, record))

	loaded, err := repo.Get(ctx, "consent:u1:1.0")
	require.NoError(t, err)
	assert.Equal(t, record, loaded)

	_, err = repo.Get(ctx, "consent:u1:2.0")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRepositoryList(t *testing.T) {
	repo := NewRepository[testConsent](kv.NewMemoryStore(), "consent record", consentTestKey)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &testConsent{UserID: "u1", PolicyVersion: "1.0", ConsentStatus: "granted"}))
	require.NoError(t, repo.Save(ctx, &testConsent{UserID: "u1", PolicyVersion: "2.0", ConsentStatus: "withdrawn"}))
	require.NoError(t, repo.Save(ctx, &testConsent{UserID: "u2", PolicyVersion: "1.0", ConsentStatus: "granted"}))

	entities, err := repo.List(ctx, "consent:u1:")
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "1.0", entities[0].PolicyVersion)
	assert.Equal(t, "2.0", entities[1].PolicyVersion)
}

func TestValidateNonStruct(t *testing.T) {
	err := Validate("thing", "not a struct")
	require.Error(t, err)

	// Not a schema violation, a programming error.
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
}
