package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-ddd-task-tracker/internal/domain/repository"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/apperror"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/helpers"
)

const (
	TokenTypeBearer = "bearer"

	MsgEmailRegistered    = "Email already registered"
	MsgIncorrectEmailPass = "Incorrect email or password"
)

// PasswordHasher is the credential hashing capability the session service needs.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer mints signed access tokens.
type TokenIssuer interface {
	Issue(subject string, opts ...helpers.TokenOption) (string, time.Time, error)
}

// Session is what register and login hand back to the client.
type Session struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type SessionService struct {
	users  repo.UserRepository
	hasher PasswordHasher
	issuer TokenIssuer
	ttl    time.Duration
	logger logrus.FieldLogger

	// verified against when the email is unknown so both login failures cost one bcrypt run
	dummyDigest string
}

func NewSessionService(users repo.UserRepository, hasher PasswordHasher, issuer TokenIssuer, ttl time.Duration, logger logrus.FieldLogger) (*SessionService, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session lifetime must be positive, got %v", ttl)
	}
	dummy, err := hasher.Hash("task-tracker-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy digest: %w", err)
	}
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &SessionService{
		users:       users,
		hasher:      hasher,
		issuer:      issuer,
		ttl:         ttl,
		logger:      logger,
		dummyDigest: dummy,
	}, nil
}

// Register creates an active user and returns a session token for it.
func (s *SessionService) Register(ctx context.Context, email, password string) (Session, error) {
	if err := checkCredentials(email, password); err != nil {
		return Session{}, err
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return Session{}, apperror.New(apperror.KindConflict, MsgEmailRegistered)
	case !errors.Is(err, repo.ErrNotFound):
		s.logger.WithError(err).Error("lookup user for register failed")
		return Session{}, apperror.Wrap(err, apperror.KindInternal, apperror.ErrInternal.Message)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, helpers.ErrPasswordTooLong) {
			return Session{}, apperror.Wrap(err, apperror.KindInvalid, "password is too long")
		}
		s.logger.WithError(err).Error("hash password failed")
		return Session{}, apperror.Wrap(err, apperror.KindInternal, apperror.ErrInternal.Message)
	}

	u, err := s.users.Insert(ctx, email, digest)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return Session{}, apperror.Wrap(err, apperror.KindConflict, MsgEmailRegistered)
		}
		s.logger.WithError(err).Error("insert user failed")
		return Session{}, apperror.Wrap(err, apperror.KindInternal, apperror.ErrInternal.Message)
	}
	s.logger.WithField("user_id", u.ID).Info("user registered")

	return s.issue(u.Email)
}

// Login verifies credentials and returns a session token. An unknown email and
// a wrong password are indistinguishable to the caller.
func (s *SessionService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.logger.WithError(err).Error("lookup user for login failed")
			return Session{}, apperror.Wrap(err, apperror.KindInternal, apperror.ErrInternal.Message)
		}
		s.hasher.Verify(password, s.dummyDigest)
		return Session{}, apperror.New(apperror.KindUnauthorized, MsgIncorrectEmailPass)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return Session{}, apperror.New(apperror.KindUnauthorized, MsgIncorrectEmailPass)
	}
	return s.issue(u.Email)
}

func (s *SessionService) issue(subject string) (Session, error) {
	tok, exp, err := s.issuer.Issue(subject, helpers.WithLifetime(s.ttl))
	if err != nil {
		s.logger.WithError(err).Error("issue access token failed")
		return Session{}, apperror.Wrap(err, apperror.KindInternal, apperror.ErrInternal.Message)
	}
	return Session{AccessToken: tok, TokenType: TokenTypeBearer, ExpiresAt: exp}, nil
}

func checkCredentials(email, password string) error {
	if email == "" {
		return apperror.New(apperror.KindInvalid, "email is required")
	}
	if password == "" {
		return apperror.New(apperror.KindInvalid, "password is required")
	}
	return nil
}
