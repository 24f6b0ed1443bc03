package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/auth/internal/domain"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/auth/internal/repository"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/config"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/crypto"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
	jwtpkg "github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/jwt"
)

var (
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken         = apperr.New(apperr.KindEmailTaken, "Email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = apperr.New(apperr.KindInvalidCredentials, "Invalid credentials")
	// ErrInvalidToken collapses every token verification failure.
	ErrInvalidToken       = apperr.New(apperr.KindInvalidOrExpiredToken, "Invalid or expired token")
	// ErrInactiveUser means the token is valid but its user is gone or deactivated.
	ErrInactiveUser       = apperr.New(apperr.KindInvalidOrExpiredToken, "User not found or inactive")
)

// dummyHash is compared against on unknown emails so that both failure paths
// pay for one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := crypto.HashPassword("taskmesh-timing-equaliser")
	if err != nil {
		panic(fmt.Sprintf("hash dummy password: %v", err))
	}
	return hash
})

// Service handles authentication workflows.
type Service struct {
	users  repository.UserRepository
	codec  *jwtpkg.Codec
	logger *slog.Logger
	cfg    config.AuthConfig
}

// New constructs a Service.
func New(users repository.UserRepository, codec *jwtpkg.Codec, logger *slog.Logger, cfg config.AuthConfig) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return Service{users: users, codec: codec, logger: logger, cfg: cfg}
}

// Token is the result of a successful authentication.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// Register creates an active account. Emails are matched exactly.
func (s Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, apperr.Validation(err)
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks credentials and mints an access token. Unknown emails
// and wrong passwords fail identically.
func (s Service) Authenticate(ctx context.Context, email, password string) (Token, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = crypto.ComparePassword(dummyHash(), password)
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return Token{}, ErrInvalidCredentials
		}
		return Token{}, fmt.Errorf("compare password: %w", err)
	}

	access, err := s.codec.Issue(identity.Claims{
		Subject:   user.ID,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}, s.cfg.AccessTokenTTL)
	if err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return Token{AccessToken: access, TokenType: "bearer", ExpiresIn: s.cfg.AccessTokenTTL}, nil
}

// Validate verifies token and returns its claims. Signature, expiry and
// format failures all collapse to ErrInvalidToken.
func (s Service) Validate(ctx context.Context, token string) (identity.Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return identity.Claims{}, ErrInvalidToken
	}
	claims, err := s.codec.Verify(trimmed)
	if err != nil {
		s.logger.DebugContext(ctx, "token rejected", "error", err)
		return identity.Claims{}, apperr.Wrap(ErrInvalidToken.Kind, ErrInvalidToken.Message, err)
	}
	return claims, nil
}

// Me resolves the account behind token, rejecting removed or inactive users.
func (s Service) Me(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInactiveUser
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func validateCredentials(email, password string) error {
	return validation.Errors{
		"email": validation.Validate(email, validation.Required, is.Email),
		"password": validation.Validate(password,
			validation.Required,
			validation.Length(1, crypto.MaxPasswordBytes),
		),
	}.Filter()
}
