// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"passport/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for user persistence. The application layer handles
// these outcomes without depending on database-specific errors.
var (
	// ErrUserNotFound is returned when no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateKey is returned when a write loses a uniqueness race on the
	// email column. The store enforces the unique index; this sentinel is the
	// tagged result the engine resolves back into user-facing semantics.
	ErrDuplicateKey = errors.New("duplicate key")
)

// UserRepository is the credential store adapter: lookup, create and update
// of user records keyed by email or id.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user entity. The store assigns the ID. A
	// uniqueness violation on email surfaces as ErrDuplicateKey.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity, used only to attach an
	// external identity to a record that never had one.
	Update(ctx context.Context, user *entity.User) error
}
