// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"regexp"

	deliverycontext "passport/internal/delivery/context"
	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// emailPattern is the basic syntactic check applied before touching the
// store. Full RFC validation is out of scope; the store's unique index is
// the real arbiter of identity.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// authService implements the AuthUsecase interface. It is the identity
// reconciliation engine: the stored AuthMethod is always the authoritative
// discriminator for which login path an email accepts, regardless of which
// path is being attempted.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup registers a new password-method user for an unseen email.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting signup", slog.String("email", input.Email))

	if input.Name == "" || input.Password == "" || !emailPattern.MatchString(input.Email) {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "signup input rejected")
	}

	existing, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Error("Signup lookup failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, domainerrors.NewStoreExecuteError(err, "failed to look up email during signup")
	}
	if existing != nil {
		return nil, srv.rejectOccupiedEmail(ctx, existing)
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Password hashing failed during signup", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrServerFault, "failed to hash password")
	}

	newUser := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		AuthMethod:   entity.AuthMethodPassword,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Lost a concurrent-signup race. The winner's record decides the
			// user-facing outcome, same as if it had been found up front.
			return nil, srv.resolveDuplicateKey(ctx, input.Email)
		}
		srv.log(ctx).Error("Signup create failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, domainerrors.NewStoreExecuteError(err, "failed to create user during signup")
	}

	output, err := srv.issueFor(ctx, newUser)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("User signed up", slog.Any("userID", newUser.ID))

	return output, nil
}

// Login authenticates a password-method user.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	if input.Email == "" || input.Password == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "login input rejected")
	}

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Identical kind and message to a wrong password: a caller can
			// not probe which emails are registered.
			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "unknown email")
		}
		srv.log(ctx).Error("Login lookup failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, domainerrors.NewStoreExecuteError(err, "failed to look up email during login")
	}

	if user.AuthMethod == entity.AuthMethodGoogle {
		srv.log(ctx).Warn("Password login attempted against google-method record", slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrMethodConflict, "login path mismatch")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch")
	}

	output, err := srv.issueFor(ctx, user)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("User logged in", slog.Any("userID", user.ID))

	return output, nil
}

// ReconcileExternalIdentity maps a verified external assertion onto a user
// record. A method conflict comes back as data in the result because the
// caller is mid-redirect; infrastructure failures remain ordinary errors.
func (srv *authService) ReconcileExternalIdentity(ctx context.Context, input *usecase.ReconcileInput) (*usecase.ReconcileResult, error) {
	srv.log(ctx).Debug("Reconciling external identity", slog.String("email", input.Email))

	if input.ExternalID == "" || !emailPattern.MatchString(input.Email) {
		return nil, errors.Wrap(domainerrors.ErrInvalidInput, "external assertion missing subject or email")
	}

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Error("Reconcile lookup failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, domainerrors.NewStoreExecuteError(err, "failed to look up email during reconciliation")
	}

	if user == nil {
		user, err = srv.createExternalUser(ctx, input)
		if err != nil {
			return nil, err
		}
		// A concurrent reconciliation may have won the create; in that case
		// createExternalUser returns the winner and we fall through to the
		// same decision table as a straight lookup hit.
	}

	if user.AuthMethod == entity.AuthMethodPassword {
		srv.log(ctx).Warn("External login attempted against password-method record", slog.Any("userID", user.ID))

		return &usecase.ReconcileResult{FailureMessage: domainerrors.ErrMethodConflict.Message()}, nil
	}

	switch {
	case !user.Linked():
		// First external assertion for a google-method record: attach once.
		user.ExternalID = input.ExternalID
		if err := srv.userRepo.Update(ctx, user); err != nil {
			srv.log(ctx).Error("Failed to link external identity", slog.Any("userID", user.ID), slog.Any("error", err))

			return nil, domainerrors.NewStoreExecuteError(err, "failed to attach external identity")
		}
		srv.log(ctx).Info("Linked external identity", slog.Any("userID", user.ID))
	case user.ExternalID == input.ExternalID:
		// Idempotent re-confirmation, nothing to mutate.
	default:
		srv.log(ctx).Warn("External subject mismatch for linked record", slog.Any("userID", user.ID))

		return &usecase.ReconcileResult{FailureMessage: "this email is already linked to a different Google account"}, nil
	}

	output, err := srv.issueFor(ctx, user)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("External identity reconciled", slog.Any("userID", user.ID))

	return &usecase.ReconcileResult{Output: output}, nil
}

// GetProfile loads the public view of the user a token resolved to.
func (srv *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*usecase.UserView, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrNotFound, "subject no longer exists")
		}
		srv.log(ctx).Error("Profile lookup failed", slog.Any("userID", userID), slog.Any("error", err))

		return nil, domainerrors.NewStoreExecuteError(err, "failed to load profile")
	}

	return usecase.NewUserView(user), nil
}

// createExternalUser creates a google-method record for an unseen email. If
// the create loses a uniqueness race, the winning record is returned instead
// so the caller can re-run the decision table against it.
func (srv *authService) createExternalUser(ctx context.Context, input *usecase.ReconcileInput) (*entity.User, error) {
	newUser := &entity.User{
		Name:       input.DisplayName,
		Email:      input.Email,
		ExternalID: input.ExternalID,
		AuthMethod: entity.AuthMethodGoogle,
	}

	err := srv.userRepo.Create(ctx, newUser)
	if err == nil {
		srv.log(ctx).Info("Created user from external identity", slog.Any("userID", newUser.ID))

		return newUser, nil
	}

	if errors.Is(err, repository.ErrDuplicateKey) {
		winner, findErr := srv.userRepo.FindByEmail(ctx, input.Email)
		if findErr != nil {
			return nil, domainerrors.NewStoreExecuteError(findErr, "failed to resolve reconciliation race")
		}

		return winner, nil
	}

	srv.log(ctx).Error("Reconcile create failed", slog.String("email", input.Email), slog.Any("error", err))

	return nil, domainerrors.NewStoreExecuteError(err, "failed to create user during reconciliation")
}

// rejectOccupiedEmail maps an existing record onto the signup failure the
// attempted path must see.
func (srv *authService) rejectOccupiedEmail(ctx context.Context, existing *entity.User) error {
	if existing.AuthMethod == entity.AuthMethodGoogle {
		srv.log(ctx).Warn("Signup attempted against google-method record", slog.Any("userID", existing.ID))

		return errors.Wrap(domainerrors.ErrMethodConflict, "email registered via external identity")
	}

	return errors.Wrap(domainerrors.ErrDuplicateEmail, "email already registered")
}

// resolveDuplicateKey re-fetches the record that won a concurrent create so
// the loser still sees correct user-facing semantics instead of a raw
// storage failure.
func (srv *authService) resolveDuplicateKey(ctx context.Context, email string) error {
	winner, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		srv.log(ctx).Error("Failed to resolve signup race", slog.String("email", email), slog.Any("error", err))

		return domainerrors.NewStoreExecuteError(err, "failed to resolve signup race")
	}

	return srv.rejectOccupiedEmail(ctx, winner)
}

// issueFor signs a token for the user and assembles the public output.
func (srv *authService) issueFor(ctx context.Context, user *entity.User) (*usecase.AuthOutput, error) {
	token, err := srv.tokenService.Issue(user.ID)
	if err != nil {
		srv.log(ctx).Error("Token issuance failed", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrServerFault, "failed to sign token")
	}

	return &usecase.AuthOutput{
		Token: token,
		User:  usecase.NewUserView(user),
	}, nil
}
