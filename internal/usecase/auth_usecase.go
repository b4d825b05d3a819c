// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"passport/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a new local account.
type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginInput defines the data required for a local login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ReconcileInput carries a verified external identity assertion. The
// provider exchange and signature checks happen before this is built.
type ReconcileInput struct {
	ExternalID  string
	Email       string
	DisplayName string
}

// --- Output DTOs ---

// UserView is the public projection of a user record. It never carries the
// password hash.
type UserView struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// NewUserView projects an entity onto its public view.
func NewUserView(user *entity.User) *UserView {
	return &UserView{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// AuthOutput returns a freshly issued token together with the public view of
// the authenticated user.
type AuthOutput struct {
	Token string    `json:"token"`
	User  *UserView `json:"user"`
}

// ReconcileResult is a discriminated value, not an error: exactly one of the
// two fields is set. The external callback caller is mid-redirect and must
// embed a failure as text in a URL rather than produce an error status.
type ReconcileResult struct {
	Output         *AuthOutput
	FailureMessage string
}

// OK reports whether reconciliation proceeded and a token was issued.
func (r *ReconcileResult) OK() bool {
	return r.Output != nil
}

// AuthUsecase is the identity reconciliation engine: it decides whether an
// authentication attempt creates, reuses, rejects or links a user record,
// and whether a token may be issued.
type AuthUsecase interface {
	// Signup registers a new password-method user for an unseen email.
	Signup(ctx context.Context, input *SignupInput) (*AuthOutput, error)

	// Login authenticates a password-method user.
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// ReconcileExternalIdentity maps a verified external assertion onto a
	// user record. Its rejection is data, not an error.
	ReconcileExternalIdentity(ctx context.Context, input *ReconcileInput) (*ReconcileResult, error)

	// GetProfile loads the public view of the user a token resolved to.
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserView, error)
}
