package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-auth-service/internal/domain/apperror"
	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	repo "github.com/oksasatya/go-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-auth-service/internal/infrastructure/memory"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T, r repo.UserRepository) *AuthService {
	t.Helper()
	hasher, err := helpers.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := helpers.NewTokenManager("test-secret", time.Hour, 0)
	require.NoError(t, err)
	svc, err := NewAuthService(r, hasher, tokens, quietLogger())
	require.NoError(t, err)
	return svc
}

type mockUserRepo struct {
	createFn    func(ctx context.Context, name, email, hash string) (int64, error)
	getByNameFn func(ctx context.Context, name string) (*entity.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, name, email, hash string) (int64, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, email, hash)
	}
	return 1, nil
}

func (m *mockUserRepo) GetByName(ctx context.Context, name string) (*entity.User, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, repo.ErrNotFound
}

type failingIssuer struct{}

func (failingIssuer) IssueAccess(int64) (string, time.Time, error) {
	return "", time.Time{}, errors.New("signer broken")
}
func (failingIssuer) Verify(string) (int64, error) { return 0, helpers.ErrTokenMalformed }

func TestScenario_RegisterLoginAuthorize(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())
	ctx := context.Background()

	id, err := svc.Register(ctx, RegisterInput{Name: "alice", Email: "a@x.com", Password: "pw123!"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	res, err := svc.Login(ctx, LoginInput{Name: "alice", Password: "pw123!"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UserID)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, 5*time.Second)

	subject, err := svc.Authorize(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), subject)

	_, err = svc.Authorize(ctx, "garbage")
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
}

func TestRoundTrip_ManyUsers(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())
	ctx := context.Background()

	inputs := []RegisterInput{
		{Name: "bob", Email: "b@x.com", Password: "hunter2"},
		{Name: "Bob", Email: "B@x.com", Password: "hunter2"},
		{Name: "żółw", Email: "z@x.com", Password: "pässwörd"},
		{Name: "carol smith", Email: "c@x.com", Password: strings.Repeat("p", 72)},
	}
	for _, in := range inputs {
		id, err := svc.Register(ctx, in)
		require.NoError(t, err, in.Name)

		res, err := svc.Login(ctx, LoginInput{Name: in.Name, Password: in.Password})
		require.NoError(t, err, in.Name)

		subject, err := svc.Authorize(ctx, res.Token)
		require.NoError(t, err, in.Name)
		assert.Equal(t, id, subject, in.Name)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{Name: "alice", Email: "a@x.com", Password: "first"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "alice", Email: "evil@x.com", Password: "second"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	res, err := svc.Login(ctx, LoginInput{Name: "alice", Password: "first"})
	require.NoError(t, err)
	assert.Equal(t, first, res.UserID)

	_, err = svc.Login(ctx, LoginInput{Name: "alice", Password: "second"})
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
}

func TestRegister_ConcurrentSameName(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, RegisterInput{Name: "alice", Email: "a@x.com", Password: fmt.Sprintf("pw%d", i)})
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperror.ErrConflict):
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@x.com", Password: "pw"}, "name"},
		{"missing email", RegisterInput{Name: "alice", Password: "pw"}, "email"},
		{"missing password", RegisterInput{Name: "alice", Email: "a@x.com"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			require.ErrorIs(t, err, apperror.ErrValidation)
			e, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, "is required", e.Fields[tc.field])
		})
	}
}

func TestNULBytesRejectedBeforeStore(t *testing.T) {
	called := false
	svc := newTestService(t, &mockUserRepo{
		createFn: func(context.Context, string, string, string) (int64, error) {
			called = true
			return 1, nil
		},
		getByNameFn: func(context.Context, string) (*entity.User, error) {
			called = true
			return nil, repo.ErrNotFound
		},
	})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "ali\x00ce", Email: "a@x.com", Password: "pw"})
	require.ErrorIs(t, err, apperror.ErrValidation)
	e, _ := apperror.As(err)
	assert.Equal(t, "must not contain NUL characters", e.Fields["name"])

	_, err = svc.Register(ctx, RegisterInput{Name: "alice", Email: "a\x00@x.com", Password: "pw"})
	require.ErrorIs(t, err, apperror.ErrValidation)
	e, _ = apperror.As(err)
	assert.Contains(t, e.Fields, "email")

	_, err = svc.Login(ctx, LoginInput{Name: "ali\x00ce", Password: "pw"})
	require.ErrorIs(t, err, apperror.ErrValidation)

	assert.False(t, called)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	called := false
	svc := newTestService(t, &mockUserRepo{createFn: func(context.Context, string, string, string) (int64, error) {
		called = true
		return 1, nil
	}})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "alice", Email: "a@x.com", Password: strings.Repeat("x", 73)})
	require.ErrorIs(t, err, apperror.ErrValidation)
	e, _ := apperror.As(err)
	assert.Contains(t, e.Fields, "password")
	assert.False(t, called)
}

func TestLogin_PasswordPastLimitDoesNotMatch(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())
	ctx := context.Background()
	pw := strings.Repeat("p", 72)
	_, err := svc.Register(ctx, RegisterInput{Name: "alice", Email: "a@x.com", Password: pw})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Name: "alice", Password: pw + "x"})
	require.ErrorIs(t, err, apperror.ErrAuthentication)

	res, err := svc.Login(ctx, LoginInput{Name: "alice", Password: pw})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestRegister_StoreUnavailable(t *testing.T) {
	cause := fmt.Errorf("insert user: %w: %w", repo.ErrStoreUnavailable, errors.New("connection refused"))
	svc := newTestService(t, &mockUserRepo{createFn: func(context.Context, string, string, string) (int64, error) {
		return 0, cause
	}})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "alice", Email: "a@x.com", Password: "pw"})
	require.ErrorIs(t, err, apperror.ErrStoreUnavailable)
	e, _ := apperror.As(err)
	assert.Equal(t, "internal error", e.Message)
	assert.NotContains(t, e.Message, "connection refused")
}

func TestRegister_StoresDigestNotPlaintext(t *testing.T) {
	var stored string
	svc := newTestService(t, &mockUserRepo{createFn: func(_ context.Context, _, _, hash string) (int64, error) {
		stored = hash
		return 9, nil
	}})

	id, err := svc.Register(context.Background(), RegisterInput{Name: "alice", Email: "a@x.com", Password: "pw123!"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.NotEqual(t, "pw123!", stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("pw123!")))
}

func TestLogin_EnumerationResistance(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "alice", Email: "a@x.com", Password: "right"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginInput{Name: "alice", Password: "wrong"})
	_, unknownUser := svc.Login(ctx, LoginInput{Name: "mallory", Password: "wrong"})

	require.ErrorIs(t, wrongPassword, apperror.ErrAuthentication)
	require.ErrorIs(t, unknownUser, apperror.ErrAuthentication)
	assert.Equal(t, wrongPassword, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestLogin_Validation(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())

	_, err := svc.Login(context.Background(), LoginInput{Name: "alice"})
	require.ErrorIs(t, err, apperror.ErrValidation)
	e, _ := apperror.As(err)
	assert.Equal(t, "is required", e.Fields["password"])

	_, err = svc.Login(context.Background(), LoginInput{Password: "pw"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLogin_StoreUnavailable(t *testing.T) {
	svc := newTestService(t, &mockUserRepo{getByNameFn: func(context.Context, string) (*entity.User, error) {
		return nil, fmt.Errorf("select user: %w: %w", repo.ErrStoreUnavailable, errors.New("timeout"))
	}})

	_, err := svc.Login(context.Background(), LoginInput{Name: "alice", Password: "pw"})
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, apperror.ErrAuthentication)
}

func TestLogin_IssuerFailure(t *testing.T) {
	hasher, err := helpers.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	digest, err := hasher.Hash("pw")
	require.NoError(t, err)

	svc, err := NewAuthService(&mockUserRepo{getByNameFn: func(context.Context, string) (*entity.User, error) {
		return &entity.User{ID: 3, Name: "alice", PasswordHash: digest}, nil
	}}, hasher, failingIssuer{}, quietLogger())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Name: "alice", Password: "pw"})
	assert.ErrorIs(t, err, apperror.ErrInternal)
}

func TestAuthorize_MissingToken(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())

	_, err := svc.Authorize(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestAuthorize_ExpiredToken(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())
	tokens, err := helpers.NewTokenManager("test-secret", time.Hour, 0)
	require.NoError(t, err)
	tok, _, err := tokens.Issue(1, 0)
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), tok)
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
	assert.ErrorIs(t, err, helpers.ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrMissingToken)
}

func TestAuthorize_ForeignSecret(t *testing.T) {
	svc := newTestService(t, memory.NewUserRepository())
	other, err := helpers.NewTokenManager("someone-else", time.Hour, 0)
	require.NoError(t, err)
	tok, _, err := other.IssueAccess(1)
	require.NoError(t, err)

	_, err = svc.Authorize(context.Background(), tok)
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
	assert.ErrorIs(t, err, helpers.ErrInvalidSignature)
}
