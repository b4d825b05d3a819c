// Package google implements the provider side of the external login flow.
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"passport/config"
	"passport/internal/domain/service"

	"github.com/pkg/errors"
	oauth2api "google.golang.org/api/oauth2/v2"
)

const (
	googleOAuthURL    = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	// stateTTL bounds how long a consent round-trip may take before the
	// nonce is rejected.
	stateTTL = 10 * time.Minute

	defaultScopes = "openid email profile"
)

// OAuthService handles Google OAuth infrastructure operations: consent URL
// construction, CSRF state tracking, code exchange and the userinfo fetch.
type OAuthService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string
	tokenURL     string
	userInfoURL  string
	httpClient   *http.Client
	now          func() time.Time

	// State storage for CSRF protection.
	stateMutex sync.Mutex
	stateStore map[string]time.Time
}

// NewOAuthService creates a new Google OAuth service from configuration.
func NewOAuthService(cfg *config.Config) service.OAuthService {
	scopes := cfg.GoogleOAuth.Scopes
	if scopes == "" {
		scopes = defaultScopes
	}

	return &OAuthService{
		clientID:     cfg.GoogleOAuth.ClientID,
		clientSecret: cfg.GoogleOAuth.ClientSecret,
		redirectURI:  cfg.GoogleOAuth.RedirectURI,
		scopes:       scopes,
		tokenURL:     googleTokenURL,
		userInfoURL:  googleUserInfoURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		now:          time.Now,
		stateStore:   make(map[string]time.Time),
	}
}

// BuildAuthorizationURL constructs the Google consent URL carrying the state
// nonce, and records the nonce for the callback to validate.
func (s *OAuthService) BuildAuthorizationURL(state string) string {
	s.storeState(state)

	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURI)
	params.Set("scope", s.scopes)
	params.Set("response_type", "code")
	params.Set("state", state)

	return googleOAuthURL + "?" + params.Encode()
}

// ValidateState consumes a state nonce: it validates at most once and only
// before it expires.
func (s *OAuthService) ValidateState(state string) bool {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	expiry, exists := s.stateStore[state]
	if !exists {
		return false
	}
	delete(s.stateStore, state)

	return s.now().Before(expiry)
}

// ExchangeCode trades an authorization code for Google's verified view of
// the user: token exchange followed by the userinfo fetch.
func (s *OAuthService) ExchangeCode(ctx context.Context, code string) (*service.OAuthUser, error) {
	accessToken, err := s.exchangeCodeForToken(ctx, code)
	if err != nil {
		return nil, err
	}

	info, err := s.fetchUserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if info.Id == "" || info.Email == "" {
		return nil, errors.New("userinfo response missing subject or email")
	}

	oauthUser := &service.OAuthUser{
		ID:    info.Id,
		Email: info.Email,
		Name:  info.Name,
	}
	if info.VerifiedEmail != nil {
		oauthUser.EmailVerified = *info.VerifiedEmail
	}
	if !oauthUser.EmailVerified {
		return nil, errors.New("google account email is not verified")
	}

	return oauthUser, nil
}

func (s *OAuthService) storeState(state string) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	now := s.now()
	s.stateStore[state] = now.Add(stateTTL)

	// Drop expired nonces while we hold the lock.
	for st, expiry := range s.stateStore {
		if now.After(expiry) {
			delete(s.stateStore, st)
		}
	}
}

// exchangeCodeForToken exchanges an authorization code for an access token.
func (s *OAuthService) exchangeCodeForToken(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", s.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to create token exchange request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to exchange code for token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", errors.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "failed to decode token response")
	}
	if tokenResponse.AccessToken == "" {
		return "", errors.New("token response missing access token")
	}

	return tokenResponse.AccessToken, nil
}

// fetchUserInfo retrieves the profile fields granted by the consent scope.
func (s *OAuthService) fetchUserInfo(ctx context.Context, accessToken string) (*oauth2api.Userinfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user info request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return nil, errors.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info oauth2api.Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "failed to decode user info response")
	}

	return &info, nil
}
