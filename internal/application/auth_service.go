// Package application coordinates the credential store, the password hasher and
// the token manager into the register, login and authorize workflows.
package application

import (
	"context"
	"errors"
	"expvar"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/domain/apperror"
	repo "github.com/oksasatya/go-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
	"github.com/oksasatya/go-auth-service/pkg/validation"
)

// ErrMissingToken is the cause of the authentication error returned by Authorize for an empty token.
var ErrMissingToken = errors.New("missing token")

// errInvalidCredentials is shared by every login failure so unknown names and
// wrong passwords are indistinguishable to callers.
var errInvalidCredentials = apperror.Authentication("invalid credentials", nil)

// Counters shown under /debug/vars.
var stats = expvar.NewMap("auth")

// TokenIssuer mints and verifies access tokens.
type TokenIssuer interface {
	IssueAccess(subjectID int64) (string, time.Time, error)
	Verify(token string) (int64, error)
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,nonul"`
	Email    string `json:"email" validate:"required,nonul"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Name     string `json:"name" validate:"required,nonul"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	UserID    int64     `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService is stateless; it is safe for concurrent use.
type AuthService struct {
	repo     repo.UserRepository
	hasher   helpers.PasswordHasher
	tokens   TokenIssuer
	logger   *logrus.Logger
	validate *validator.Validate

	// verified against when the name is unknown so both login failures cost one hash
	dummyDigest string
}

func NewAuthService(r repo.UserRepository, hasher helpers.PasswordHasher, tokens TokenIssuer, logger *logrus.Logger) (*AuthService, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	dummy, err := hasher.Hash("invalid-user-placeholder")
	if err != nil {
		return nil, err
	}
	return &AuthService{
		repo:        r,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
		validate:    validation.New(),
		dummyDigest: dummy,
	}, nil
}

// Register creates a user and returns the id assigned by the store.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	if err := s.validate.Struct(in); err != nil {
		return 0, apperror.Validation("invalid registration payload", validation.ToDetails(err))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, helpers.ErrPasswordTooLong) {
			return 0, apperror.Validation("invalid payload", map[string]string{"password": "must be at most 72 bytes long"})
		}
		s.logger.WithError(err).Error("hash password failed")
		return 0, apperror.Internal(err)
	}

	id, err := s.repo.Create(ctx, in.Name, in.Email, hash)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateName) {
			stats.Add("register_conflict", 1)
			return 0, apperror.Conflict("name already registered", err)
		}
		s.logger.WithError(err).WithField("name", in.Name).Error("create user failed")
		return 0, apperror.StoreUnavailable(err)
	}

	stats.Add("register_ok", 1)
	s.logger.WithField("user_id", id).Info("user registered")
	return id, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.Validation("invalid login payload", validation.ToDetails(err))
	}

	u, err := s.repo.GetByName(ctx, in.Name)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.logger.WithError(err).WithField("name", in.Name).Error("lookup user failed")
			return nil, apperror.StoreUnavailable(err)
		}
		_ = s.hasher.Verify(in.Password, s.dummyDigest)
		stats.Add("login_failed", 1)
		return nil, errInvalidCredentials
	}

	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		stats.Add("login_failed", 1)
		s.logger.WithField("user_id", u.ID).Debug("password mismatch")
		return nil, errInvalidCredentials
	}

	token, exp, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Error("issue access token failed")
		return nil, apperror.Internal(err)
	}

	stats.Add("login_ok", 1)
	return &LoginResult{UserID: u.ID, Token: token, ExpiresAt: exp}, nil
}

// Authorize resolves a presented token to its subject id.
func (s *AuthService) Authorize(_ context.Context, token string) (int64, error) {
	if token == "" {
		stats.Add("authorize_failed", 1)
		return 0, apperror.Authentication("missing token", ErrMissingToken)
	}
	id, err := s.tokens.Verify(token)
	if err != nil {
		stats.Add("authorize_failed", 1)
		return 0, apperror.Authentication("invalid token", err)
	}
	return id, nil
}
