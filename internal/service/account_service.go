package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"taskmanager/internal/auth"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 8

// AccountService owns user credentials: registration, login, profile and
// password changes, and account deletion with its task cascade.
type AccountService struct {
	users  UserRepository
	tasks  TaskRepository
	hasher *auth.PasswordHasher
	tokens *auth.JWTManager
}

func NewAccountService(users UserRepository, tasks TaskRepository, hasher *auth.PasswordHasher, tokens *auth.JWTManager) *AccountService {
	return &AccountService{
		users:  users,
		tasks:  tasks,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a user and returns a signed identity token for them.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("name", "must not be empty")
	}

	email, err := normalizeEmail(email)
	if err != nil {
		return "", NewValidationError("email", "must be a valid email address")
	}

	if len(password) < minPasswordLength {
		return "", NewValidationError("password", "must be at least 8 characters")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", NewDuplicateEmail(email)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return "", fmt.Errorf("checking email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return "", NewDuplicateEmail(email)
		}
		return "", fmt.Errorf("creating user: %w", err)
	}

	logger.Info("Service: user registered", zap.String("user_id", u.ID.String()))
	return s.issueToken(u)
}

// Login verifies the password against the stored hash and returns a signed
// identity token.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", NewValidationError("email", "must be a valid email address")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", NewUnknownEmail(email)
		}
		return "", fmt.Errorf("getting user by email: %w", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		logger.Warn("Service: failed login attempt", zap.String("user_id", u.ID.String()))
		return "", NewInvalidCredentials()
	}

	return s.issueToken(u)
}

// GetProfile returns the user record; the password hash never leaves the
// model's JSON boundary.
func (s *AccountService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("user", userID.String())
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// UpdateProfile applies only the supplied fields. A nil pointer leaves the
// field untouched.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email *string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("user", userID.String())
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, NewValidationError("name", "must not be empty")
		}
		u.Name = trimmed
	}

	if email != nil {
		normalized, err := normalizeEmail(*email)
		if err != nil {
			return nil, NewValidationError("email", "must be a valid email address")
		}

		if existing, err := s.users.GetByEmail(ctx, normalized); err == nil {
			if existing.ID != userID {
				return nil, NewEmailInUse(normalized)
			}
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("checking email: %w", err)
		}

		u.Email = normalized
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, NewEmailInUse(u.Email)
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return u, nil
}

// ChangePassword replaces the stored hash after proving the current
// password. The strength policy runs first, before any store access.
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if reason := passwordWeakness(newPassword); reason != "" {
		return NewWeakPassword(reason)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("user", userID.String())
		}
		return fmt.Errorf("getting user: %w", err)
	}

	if !s.hasher.Verify(currentPassword, u.PasswordHash) {
		return NewInvalidCredentials()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	u.PasswordHash = hash
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	logger.Info("Service: password changed", zap.String("user_id", userID.String()))
	return nil
}

// DeleteAccount removes the user's tasks first, then the user. When task
// deletion fails the user stays; the reconciliation sweep covers a crash
// between the two store calls.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("user", userID.String())
		}
		return fmt.Errorf("getting user: %w", err)
	}

	removed, err := s.tasks.DeleteByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("deleting owned tasks: %w", err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("user", userID.String())
		}
		return fmt.Errorf("deleting user: %w", err)
	}

	logger.Info("Service: account deleted",
		zap.String("user_id", userID.String()),
		zap.Int64("tasks_removed", removed))
	return nil
}

func (s *AccountService) issueToken(u *user.User) (string, error) {
	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return email, nil
}

// passwordWeakness returns an empty string for passwords satisfying the
// policy: at least 8 characters with lower, upper, digit and symbol classes
// all present.
func passwordWeakness(password string) string {
	if len(password) < minPasswordLength {
		return "must be at least 8 characters"
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return "must contain lowercase, uppercase, digit and symbol characters"
	}
	return ""
}
