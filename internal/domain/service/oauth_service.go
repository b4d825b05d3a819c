package service

import (
	"context"
)

// OAuthUser represents the identity assertion consumed from the external
// provider after the exchange has been validated.
type OAuthUser struct {
	ID            string // Provider-specific user ID (Google's 'sub' claim)
	Email         string // User's primary email address
	Name          string // User's display name; may be empty
	EmailVerified bool   // Whether the provider vouches for the email
}

// OAuthService covers the provider-side mechanics of the external login
// flow: building the consent URL, guarding the callback against CSRF, and
// turning an authorization code into a verified profile. The reconciliation
// engine never sees any of this; it receives only the resulting OAuthUser.
type OAuthService interface {
	// BuildAuthorizationURL constructs the provider consent URL carrying the
	// given state nonce and the fixed profile+email scope.
	BuildAuthorizationURL(state string) string

	// ValidateState consumes a state nonce issued by BuildAuthorizationURL.
	// A nonce validates at most once and only before it expires.
	ValidateState(state string) bool

	// ExchangeCode trades an authorization code for the provider's verified
	// view of the user.
	ExchangeCode(ctx context.Context, code string) (*OAuthUser, error)
}
