// Package records implements the validated repository shared by all
// compliance entities: every write is schema-checked before it reaches the
// record store, every read is deserialized back into its entity type.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/novora/compliance-api/internal/system/kv"
)

// Shared validator instance; entity schemas are expressed as struct tags.
var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes a single schema violation.
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

// ValidationError reports why an entity failed its schema check. Invalid
// entities never reach the store.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Constraint))
	}
	return fmt.Sprintf("%s failed schema validation: %s", e.Entity, strings.Join(parts, ", "))
}

// Validate runs the schema check for entity without persisting it.
func Validate(entityName string, entity interface{}) error {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%s is not a validatable entity: %w", entityName, err)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]FieldError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, FieldError{Field: fe.Field(), Constraint: fe.Tag()})
		}
		return &ValidationError{Entity: entityName, Fields: fields}
	}
	return err
}

// Repository is a schema-validating persistence layer for one entity type,
// parameterized by the entity's key-derivation function.
type Repository[T any] struct {
	store  kv.Store
	entity string
	keyFn  func(*T) string
}

// NewRepository creates a repository for one entity kind. entity names the
// kind in validation errors; keyFn derives the storage key from an instance.
func NewRepository[T any](store kv.Store, entity string, keyFn func(*T) string) *Repository[T] {
	return &Repository[T]{store: store, entity: entity, keyFn: keyFn}
}

// Save validates the entity against its schema and stores it at its derived
// key, overwriting any prior value.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	if err := Validate(r.entity, entity); err != nil {
		return err
	}
	value, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", r.entity, err)
	}
	return r.store.Set(ctx, r.keyFn(entity), value)
}

// Get loads the entity stored at key. Returns kv.ErrNotFound on a miss.
func (r *Repository[T]) Get(ctx context.Context, key string) (*T, error) {
	value, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var entity T
	if err := json.Unmarshal(value, &entity); err != nil {
		return nil, fmt.Errorf("failed to deserialize %s at %q: %w", r.entity, key, err)
	}
	return &entity, nil
}

// List returns every entity stored under the prefix.
func (r *Repository[T]) List(ctx context.Context, prefix string) ([]T, error) {
	values, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	entities := make([]T, 0, len(values))
	for _, value := range values {
		var entity T
		if err := json.Unmarshal(value, &entity); err != nil {
			return nil, fmt.Errorf("failed to deserialize %s: %w", r.entity, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Delete removes the entity stored at key.
func (r *Repository[T]) Delete(ctx context.Context, key string) error {
	return r.store.Delete(ctx, key)
}
