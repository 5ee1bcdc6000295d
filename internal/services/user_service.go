package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/isdelr/expense-tracker-be/internal/apperrors"
	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/models"
	"github.com/isdelr/expense-tracker-be/internal/repository"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore is the persistence the user service depends on.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer issues bearer tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (string, models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// UserService provides registration, login and identity lookup.
type UserService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer

	decoyOnce sync.Once
	decoyHash string
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the credentials, hashes the password and stores the user.
func (s *UserService) Register(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.User{}, apperrors.Validation("Email and password are required!")
	}
	if !emailPattern.MatchString(email) {
		return models.User{}, apperrors.Validation("Please enter a valid email address")
	}
	if len(password) < minPasswordLength {
		return models.User{}, apperrors.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if len(password) > auth.MaxPasswordBytes {
		return models.User{}, apperrors.Validation(fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes))
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return models.User{}, apperrors.Conflict("Email already registered!")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, apperrors.Internal(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	user, err := s.users.Create(ctx, models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, apperrors.Conflict("Email already registered!")
		}
		return models.User{}, apperrors.Internal(err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credentials and issues a token. Unknown emails and wrong
// passwords produce the same error, and both paths pay for a bcrypt comparison.
func (s *UserService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", models.User{}, apperrors.Validation("Email and password are required!")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return "", models.User{}, apperrors.Internal(err)
		}
		s.hasher.Verify(password, s.decoy())
		return "", models.User{}, apperrors.InvalidCredentials()
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", models.User{}, apperrors.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", models.User{}, apperrors.Internal(fmt.Errorf("issue token: %w", err))
	}

	user.PasswordHash = ""
	return token, user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, apperrors.NotFound("User not found")
		}
		return models.User{}, apperrors.Internal(err)
	}
	user.PasswordHash = ""
	return user, nil
}

// decoy returns a hash to compare against when the email is unknown, so a
// failed lookup takes as long as a wrong password.
func (s *UserService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.New().String())
		if err == nil {
			s.decoyHash = hash
		}
	})
	return s.decoyHash
}
