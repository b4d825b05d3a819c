package auth

import (
	"testing"
	"time"

	"passport/config"
	"passport/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Token = "test_token_secret_key_very_long_for_testing"

	return cfg
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	require.NoError(t, err)
	require.NotNil(t, jwtService)

	userID := uuid.New()

	token, err := jwtService.Issue(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	subject, err := jwtService.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, subject)
}

func TestJWTService_MissingSecret(t *testing.T) {
	jwtService, err := NewJWTService(&config.Config{})

	assert.Error(t, err)
	assert.Nil(t, jwtService)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := &jwtService{
		secret: []byte("test_token_secret_key_very_long_for_testing"),
		ttl:    time.Hour,
		now:    func() time.Time { return issuedAt },
	}

	token, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	// One second before expiry the token still verifies.
	svc.now = func() time.Time { return issuedAt.Add(time.Hour - time.Second) }
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	// One second past expiry it is rejected as expired, not malformed.
	svc.now = func() time.Time { return issuedAt.Add(time.Hour + time.Second) }
	subject, err := svc.Verify(token)
	assert.Equal(t, uuid.Nil, subject)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestJWTService_MalformedToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	subject, err := jwtService.Verify("clearly-not-a-jwt-token-format")
	assert.Equal(t, uuid.Nil, subject)
	assert.ErrorIs(t, err, service.ErrTokenMalformed)
}

func TestJWTService_WrongSecretRejected(t *testing.T) {
	issuer, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	otherCfg := &config.Config{}
	otherCfg.SecretKey.Token = "a_completely_different_secret_key_for_testing"
	verifier, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, service.ErrTokenMalformed)
}

func TestJWTService_NonUUIDSubjectRejected(t *testing.T) {
	secret := []byte("test_token_secret_key_very_long_for_testing")
	claims := jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	jwtService, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	_, err = jwtService.Verify(signed)
	assert.ErrorIs(t, err, service.ErrTokenMalformed)
}

func TestJWTService_UnsignedAlgorithmRejected(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	jwtService, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	_, err = jwtService.Verify(unsigned)
	assert.ErrorIs(t, err, service.ErrTokenMalformed)
}
