package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"passport/internal/domain/entity"
	"passport/internal/domain/repository"
	"passport/internal/usecase"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory repository that enforces email uniqueness the
// way the real store's unique index does.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User

	findByEmailErr error
	createErr      error
	updateErr      error

	// createHook runs inside Create before the uniqueness check, letting a
	// test interleave a competing write at the exact race window.
	createHook func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.ID == id {
			cloned := *user

			return &cloned, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.findByEmailErr != nil {
		return nil, r.findByEmailErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cloned := *user

	return &cloned, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if r.createErr != nil {
		return r.createErr
	}

	if r.createHook != nil {
		r.createHook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return repository.ErrDuplicateKey
	}

	user.ID = uuid.New()
	cloned := *user
	r.users[user.Email] = &cloned

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; !exists {
		return repository.ErrUserNotFound
	}
	cloned := *user
	r.users[user.Email] = &cloned

	return nil
}

// seed inserts a record directly, bypassing Create side effects.
func (r *fakeUserRepo) seed(user *entity.User) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cloned := *user
	r.users[user.Email] = &cloned

	return user
}

// stored returns the current record for an email, or nil.
func (r *fakeUserRepo) stored(email string) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil
	}
	cloned := *user

	return &cloned
}

type fakeHasher struct {
	hashErr error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}

	return "hashed:" + password, nil
}

func (h *fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

type fakeTokenService struct {
	issueErr error
}

func (t *fakeTokenService) Issue(userID uuid.UUID) (string, error) {
	if t.issueErr != nil {
		return "", t.issueErr
	}

	return "token-" + userID.String(), nil
}

func (t *fakeTokenService) Verify(token string) (uuid.UUID, error) {
	return uuid.Nil, nil
}

type authServiceFixtures struct {
	service  usecase.AuthUsecase
	userRepo *fakeUserRepo
	hasher   *fakeHasher
	tokens   *fakeTokenService
}

func createTestAuthService() authServiceFixtures {
	userRepo := newFakeUserRepo()
	hasher := &fakeHasher{}
	tokens := &fakeTokenService{}

	service := NewAuthService(AuthServiceParams{
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokens,
		Logger:       newDiscardLogger(),
	})

	return authServiceFixtures{
		service:  service,
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}
