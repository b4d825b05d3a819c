package service

import (
	"errors"

	"github.com/google/uuid"
)

// Verification failure kinds. Verify returns exactly one of these; there is
// no refresh and no revocation, expiry is absolute.
var (
	// ErrTokenMalformed is returned when the token cannot be parsed or its
	// signature does not verify.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenExpired is returned when the token parsed and verified but its
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenService issues and verifies signed, time-bound identity tokens.
// Issuance and verification are pure local computations; the signing secret
// is fixed at process start.
type TokenService interface {
	// Issue produces a signed token bound to the subject, valid for the
	// service's fixed TTL from now.
	Issue(subject uuid.UUID) (string, error)

	// Verify checks signature and expiry and returns the subject id.
	// Failures are ErrTokenMalformed or ErrTokenExpired.
	Verify(token string) (uuid.UUID, error)
}
