package impl

import (
	"context"
	"testing"

	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Signup_Success(t *testing.T) {
	fx := createTestAuthService()

	ctx := context.Background()
	output, err := fx.service.Signup(ctx, &usecase.SignupInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "Password123!",
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.NotEmpty(t, output.Token)
	assert.Equal(t, "test@example.com", output.User.Email)
	assert.Equal(t, "Test User", output.User.Name)

	stored := fx.userRepo.stored("test@example.com")
	require.NotNil(t, stored)
	assert.Equal(t, entity.AuthMethodPassword, stored.AuthMethod)
	assert.Equal(t, "hashed:Password123!", stored.PasswordHash)
	assert.Empty(t, stored.ExternalID)
}

func TestAuthService_Signup_InvalidInput(t *testing.T) {
	fx := createTestAuthService()

	ctx := context.Background()
	cases := []struct {
		name  string
		input usecase.SignupInput
	}{
		{name: "missing name", input: usecase.SignupInput{Email: "a@b.com", Password: "pw"}},
		{name: "missing password", input: usecase.SignupInput{Name: "A", Email: "a@b.com"}},
		{name: "malformed email", input: usecase.SignupInput{Name: "A", Email: "not-an-email", Password: "pw"}},
		{name: "email without domain dot", input: usecase.SignupInput{Name: "A", Email: "a@b", Password: "pw"}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			output, err := fx.service.Signup(ctx, &tt.input)

			assert.Nil(t, output)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))
		})
	}

	assert.Nil(t, fx.userRepo.stored("a@b.com"))
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	fx := createTestAuthService()
	fx.userRepo.seed(&entity.User{
		Name:         "First",
		Email:        "taken@example.com",
		PasswordHash: "hashed:original",
		AuthMethod:   entity.AuthMethodPassword,
	})

	output, err := fx.service.Signup(context.Background(), &usecase.SignupInput{
		Name:     "Second",
		Email:    "taken@example.com",
		Password: "Password123!",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateEmail))

	stored := fx.userRepo.stored("taken@example.com")
	assert.Equal(t, "First", stored.Name)
	assert.Equal(t, "hashed:original", stored.PasswordHash)
}

func TestAuthService_Signup_MethodConflictWithGoogleRecord(t *testing.T) {
	fx := createTestAuthService()
	fx.userRepo.seed(&entity.User{
		Name:       "Google User",
		Email:      "google@example.com",
		ExternalID: "google-sub-1",
		AuthMethod: entity.AuthMethodGoogle,
	})

	output, err := fx.service.Signup(context.Background(), &usecase.SignupInput{
		Name:     "Impostor",
		Email:    "google@example.com",
		Password: "Password123!",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrMethodConflict))
}

func TestAuthService_Signup_LostCreateRaceResolvesToWinner(t *testing.T) {
	fx := createTestAuthService()

	// Competing signup lands between the lookup and the create.
	fx.userRepo.createHook = func() {
		fx.userRepo.createHook = nil
		fx.userRepo.seed(&entity.User{
			Name:         "Winner",
			Email:        "raced@example.com",
			PasswordHash: "hashed:winner",
			AuthMethod:   entity.AuthMethodPassword,
		})
	}

	output, err := fx.service.Signup(context.Background(), &usecase.SignupInput{
		Name:     "Loser",
		Email:    "raced@example.com",
		Password: "Password123!",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateEmail))
	assert.Equal(t, "Winner", fx.userRepo.stored("raced@example.com").Name)
}

func TestAuthService_Signup_LostCreateRaceAgainstGoogleRecord(t *testing.T) {
	fx := createTestAuthService()

	fx.userRepo.createHook = func() {
		fx.userRepo.createHook = nil
		fx.userRepo.seed(&entity.User{
			Name:       "Winner",
			Email:      "raced@example.com",
			ExternalID: "google-sub-9",
			AuthMethod: entity.AuthMethodGoogle,
		})
	}

	output, err := fx.service.Signup(context.Background(), &usecase.SignupInput{
		Name:     "Loser",
		Email:    "raced@example.com",
		Password: "Password123!",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrMethodConflict))
}

func TestAuthService_SignupThenLogin(t *testing.T) {
	fx := createTestAuthService()
	ctx := context.Background()

	signedUp, err := fx.service.Signup(ctx, &usecase.SignupInput{
		Name:     "Alice",
		Email:    "alice@x.com",
		Password: "pw123",
	})
	require.NoError(t, err)

	_, err = fx.service.Login(ctx, &usecase.LoginInput{Email: "alice@x.com", Password: "wrong"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

	loggedIn, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, loggedIn.User.ID)
}

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService()
	seeded := fx.userRepo.seed(&entity.User{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hashed:Password123!",
		AuthMethod:   entity.AuthMethodPassword,
	})

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "test@example.com",
		Password: "Password123!",
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "token-"+seeded.ID.String(), output.Token)
	assert.Equal(t, seeded.ID, output.User.ID)
}

func TestAuthService_Login_EnumerationSafety(t *testing.T) {
	fx := createTestAuthService()
	fx.userRepo.seed(&entity.User{
		Name:         "Test User",
		Email:        "known@example.com",
		PasswordHash: "hashed:correct",
		AuthMethod:   entity.AuthMethodPassword,
	})

	ctx := context.Background()

	_, unknownEmailErr := fx.service.Login(ctx, &usecase.LoginInput{
		Email:    "unknown@example.com",
		Password: "whatever",
	})
	_, wrongPasswordErr := fx.service.Login(ctx, &usecase.LoginInput{
		Email:    "known@example.com",
		Password: "wrong",
	})

	// Unknown email and wrong password must be indistinguishable.
	assert.True(t, errors.Is(unknownEmailErr, domainerrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(wrongPasswordErr, domainerrors.ErrInvalidCredentials))

	var unknownApp, wrongApp domainerrors.AppError
	require.True(t, errors.As(unknownEmailErr, &unknownApp))
	require.True(t, errors.As(wrongPasswordErr, &wrongApp))
	assert.Equal(t, unknownApp.ErrorCode(), wrongApp.ErrorCode())
	assert.Equal(t, unknownApp.Message(), wrongApp.Message())
}

func TestAuthService_Login_MethodConflictWithGoogleRecord(t *testing.T) {
	fx := createTestAuthService()
	fx.userRepo.seed(&entity.User{
		Name:       "Google User",
		Email:      "google@example.com",
		ExternalID: "google-sub-1",
		AuthMethod: entity.AuthMethodGoogle,
	})

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "google@example.com",
		Password: "anything",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrMethodConflict))
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	fx := createTestAuthService()

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))
}

func TestAuthService_Reconcile_CreatesNewGoogleUser(t *testing.T) {
	fx := createTestAuthService()

	result, err := fx.service.ReconcileExternalIdentity(context.Background(), &usecase.ReconcileInput{
		ExternalID:  "google-sub-1",
		Email:       "new@example.com",
		DisplayName: "New User",
	})

	require.NoError(t, err)
	require.True(t, result.OK())
	assert.NotEmpty(t, result.Output.Token)

	stored := fx.userRepo.stored("new@example.com")
	require.NotNil(t, stored)
	assert.Equal(t, entity.AuthMethodGoogle, stored.AuthMethod)
	assert.Equal(t, "google-sub-1", stored.ExternalID)
	assert.Empty(t, stored.PasswordHash)
}

func TestAuthService_Reconcile_PasswordRecordYieldsFailureMessage(t *testing.T) {
	fx := createTestAuthService()
	fx.userRepo.seed(&entity.User{
		Name:         "Password User",
		Email:        "pw@example.com",
		PasswordHash: "hashed:secret",
		AuthMethod:   entity.AuthMethodPassword,
	})

	result, err := fx.service.ReconcileExternalIdentity(context.Background(), &usecase.ReconcileInput{
		ExternalID:  "google-sub-1",
		Email:       "pw@example.com",
		DisplayName: "Password User",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.OK())
	assert.NotEmpty(t, result.FailureMessage)

	// The record must be untouched: method, hash and link state all survive.
	stored := fx.userRepo.stored("pw@example.com")
	assert.Equal(t, entity.AuthMethodPassword, stored.AuthMethod)
	assert.Equal(t, "hashed:secret", stored.PasswordHash)
	assert.Empty(t, stored.ExternalID)
}

func TestAuthService_Reconcile_AttachesToUnlinkedGoogleRecord(t *testing.T) {
	fx := createTestAuthService()
	seeded := fx.userRepo.seed(&entity.User{
		Name:       "Google User",
		Email:      "google@example.com",
		AuthMethod: entity.AuthMethodGoogle,
	})

	result, err := fx.service.ReconcileExternalIdentity(context.Background(), &usecase.ReconcileInput{
		ExternalID:  "google-sub-7",
		Email:       "google@example.com",
		DisplayName: "Google User",
	})

	require.NoError(t, err)
	require.True(t, result.OK())
	assert.Equal(t, seeded.ID, result.Output.User.ID)
	assert.Equal(t, "google-sub-7", fx.userRepo.stored("google@example.com").ExternalID)
}

func TestAuthService_Reconcile_Idempotent(t *testing.T) {
	fx := createTestAuthService()

	input := &usecase.ReconcileInput{
		ExternalID:  "google-sub-1",
		Email:       "repeat@example.com",
		DisplayName: "Repeat User",
	}

	first, err := fx.service.ReconcileExternalIdentity(context.Background(), input)
	require.NoError(t, err)
	require.True(t, first.OK())

	second, err := fx.service.ReconcileExternalIdentity(context.Background(), input)
	require.NoError(t, err)
	require.True(t, second.OK())
	assert.Equal(t, first.Output.User.ID, second.Output.User.ID)
}

func TestAuthService_Reconcile_RejectsDifferentExternalSubject(t *testing.T) {
	fx := createTestAuthService()
	fx.userRepo.seed(&entity.User{
		Name:       "Google User",
		Email:      "google@example.com",
		ExternalID: "google-sub-1",
		AuthMethod: entity.AuthMethodGoogle,
	})

	result, err := fx.service.ReconcileExternalIdentity(context.Background(), &usecase.ReconcileInput{
		ExternalID:  "google-sub-other",
		Email:       "google@example.com",
		DisplayName: "Google User",
	})

	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, "google-sub-1", fx.userRepo.stored("google@example.com").ExternalID)
}

func TestAuthService_Reconcile_LostCreateRaceFallsThroughToWinner(t *testing.T) {
	fx := createTestAuthService()

	fx.userRepo.createHook = func() {
		fx.userRepo.createHook = nil
		fx.userRepo.seed(&entity.User{
			Name:       "Winner",
			Email:      "raced@example.com",
			ExternalID: "google-sub-1",
			AuthMethod: entity.AuthMethodGoogle,
		})
	}

	result, err := fx.service.ReconcileExternalIdentity(context.Background(), &usecase.ReconcileInput{
		ExternalID:  "google-sub-1",
		Email:       "raced@example.com",
		DisplayName: "Loser",
	})

	require.NoError(t, err)
	require.True(t, result.OK())
	assert.Equal(t, "Winner", result.Output.User.Name)
}

func TestAuthService_Reconcile_LostCreateRaceAgainstPasswordRecord(t *testing.T) {
	fx := createTestAuthService()

	fx.userRepo.createHook = func() {
		fx.userRepo.createHook = nil
		fx.userRepo.seed(&entity.User{
			Name:         "Winner",
			Email:        "raced@example.com",
			PasswordHash: "hashed:secret",
			AuthMethod:   entity.AuthMethodPassword,
		})
	}

	result, err := fx.service.ReconcileExternalIdentity(context.Background(), &usecase.ReconcileInput{
		ExternalID:  "google-sub-1",
		Email:       "raced@example.com",
		DisplayName: "Loser",
	})

	require.NoError(t, err)
	assert.False(t, result.OK())
}

func TestAuthService_Reconcile_EmptyDisplayNameStoredAsIs(t *testing.T) {
	fx := createTestAuthService()

	result, err := fx.service.ReconcileExternalIdentity(context.Background(), &usecase.ReconcileInput{
		ExternalID: "google-sub-1",
		Email:      "nameless@example.com",
	})

	require.NoError(t, err)
	require.True(t, result.OK())
	assert.Empty(t, fx.userRepo.stored("nameless@example.com").Name)
}

func TestAuthService_Reconcile_MissingSubjectRejected(t *testing.T) {
	fx := createTestAuthService()

	result, err := fx.service.ReconcileExternalIdentity(context.Background(), &usecase.ReconcileInput{
		Email:       "subjectless@example.com",
		DisplayName: "No Subject",
	})

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidInput))
}

func TestAuthService_GetProfile(t *testing.T) {
	fx := createTestAuthService()
	seeded := fx.userRepo.seed(&entity.User{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hashed:pw",
		AuthMethod:   entity.AuthMethodPassword,
	})

	view, err := fx.service.GetProfile(context.Background(), seeded.ID)

	require.NoError(t, err)
	assert.Equal(t, seeded.ID, view.ID)
	assert.Equal(t, "test@example.com", view.Email)
}

func TestAuthService_GetProfile_NotFound(t *testing.T) {
	fx := createTestAuthService()

	view, err := fx.service.GetProfile(context.Background(), uuid.New())

	assert.Nil(t, view)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestAuthService_StoreFailureSurfacesAsServerFault(t *testing.T) {
	fx := createTestAuthService()
	fx.userRepo.findByEmailErr = errors.New("connection reset")

	_, signupErr := fx.service.Signup(context.Background(), &usecase.SignupInput{
		Name:     "Test",
		Email:    "test@example.com",
		Password: "pw",
	})
	_, loginErr := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "test@example.com",
		Password: "pw",
	})

	var signupApp, loginApp domainerrors.AppError
	require.True(t, errors.As(signupErr, &signupApp))
	require.True(t, errors.As(loginErr, &loginApp))
	assert.Equal(t, 500, signupApp.HTTPCode())
	assert.Equal(t, 500, loginApp.HTTPCode())
}
