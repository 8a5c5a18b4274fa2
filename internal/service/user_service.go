package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/platform/logger"
	"github.com/vincentyap91/todolist/internal/service/auth"
	"github.com/vincentyap91/todolist/internal/store"
)

// UserService handles account lookups for login and the operator commands
// that seed and approve accounts.
type UserService interface {
	// Authenticate checks credentials and returns the user if they may use the API.
	// Returns auth.ErrInvalidCredentials or auth.ErrAccountNotActive.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// CreateUser registers a pending account with a hashed password.
	CreateUser(ctx context.Context, username, email, password string, role domain.UserRole) (*domain.User, error)

	// Approve marks a pending account active.
	Approve(ctx context.Context, username string) (*domain.User, error)

	// GetUser returns the account for id.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type userServiceImpl struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a new UserService. The BcryptVerifier covers both
// hashing and comparison.
func NewUserService(users store.UserStore, passwords *auth.BcryptVerifier, logger *slog.Logger) (UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if passwords == nil {
		return nil, domain.NewValidationError("passwords", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:    users,
		hasher:   passwords,
		verifier: passwords,
		logger:   logger.With(slog.String("component", "user_service")),
	}, nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login rejected: unknown username")
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login rejected: password mismatch", slog.String("user_id", user.ID.String()))
		return nil, auth.ErrInvalidCredentials
	}

	if !user.CanAccess() {
		log.Info("login rejected: account not active",
			slog.String("user_id", user.ID.String()),
			slog.String("status", string(user.Status)))
		return nil, auth.ErrAccountNotActive
	}

	return user, nil
}

// CreateUser implements UserService.CreateUser
func (s *userServiceImpl) CreateUser(
	ctx context.Context,
	username, email, password string,
	role domain.UserRole,
) (*domain.User, error) {
	if len(password) < 8 {
		return nil, domain.NewValidationError("password", "must be at least 8 characters", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := domain.NewUser(strings.TrimSpace(username), strings.TrimSpace(email), hash)
	if err != nil {
		return nil, domain.NewValidationError("user", err.Error(), err)
	}
	if role != "" {
		user.Role = role
		if err := user.Validate(); err != nil {
			return nil, domain.NewValidationError("role", err.Error(), err)
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return user, nil
}

// Approve implements UserService.Approve
func (s *userServiceImpl) Approve(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user.Status == domain.StatusActive {
		return user, nil
	}

	if err := s.users.UpdateStatus(ctx, user.ID, domain.StatusActive); err != nil {
		return nil, err
	}
	user.Status = domain.StatusActive

	logger.FromContextOrDefault(ctx, s.logger).Info("user approved",
		slog.String("user_id", user.ID.String()))
	return user, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
