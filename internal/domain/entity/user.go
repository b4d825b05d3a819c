// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuthMethod is the immutable discriminator fixing which credential path a
// user record accepts. It is set once at creation and never changed.
type AuthMethod string

const (
	// AuthMethodPassword marks a user who registered with email and password.
	AuthMethodPassword AuthMethod = "password"
	// AuthMethodGoogle marks a user who registered through Google sign-in.
	AuthMethodGoogle AuthMethod = "google"
)

// User is the single identity record for one registered person, keyed by
// email across both credential paths.
type User struct {
	ID           uuid.UUID  // Store-assigned unique identifier, immutable.
	Name         string     // Display name. May be empty for Google-created records when the provider sends none.
	Email        string     // Unique across all users; the sole cross-method correlation key.
	PasswordHash string     // Set only when AuthMethod is password. Never serialized outward.
	ExternalID   string     // Google subject id. Set at google-creation or when linked; never overwritten once set.
	AuthMethod   AuthMethod // Fixed at creation.
	CreatedAt    time.Time  // Timestamp of when this user account was created.
	UpdatedAt    time.Time  // Timestamp of the last modification to this user's data.
}

// Linked reports whether the record already carries an external identity.
func (u *User) Linked() bool {
	return u.ExternalID != ""
}
