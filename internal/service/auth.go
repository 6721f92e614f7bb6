package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civicreport/internal/models"
	"civicreport/internal/repository"

	"go.uber.org/zap"
)

var ( // Define custom errors
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // Returns JWT token, expiration time, and error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateSuperuser(ctx context.Context, name, email, password string) (*models.User, error)
	PromoteToAdmin(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens *TokenService
	logger *zap.Logger
}

func NewAuthService(repo repository.UserRepository, tokens *TokenService, logger *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, name, email, password, models.RoleUser)
}

// CreateSuperuser registers a user directly with the admin role.
func (s *authService) CreateSuperuser(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, name, email, password, models.RoleAdmin)
}

func (s *authService) createUser(ctx context.Context, name, email, password, role string) (*models.User, error) {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}

	// the unique index still decides when two registrations race past the check above
	if err := s.repo.CreateUser(ctx, user, role); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("role", role))
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	ok, err := VerifyPassword(user.PasswordHash, password)
	if err != nil {
		s.logger.Warn("Stored password hash could not be verified", zap.Int64("user_id", user.ID), zap.Error(err))
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !ok {
		return "", time.Time{}, ErrInvalidCredentials
	}

	tokenString, expirationTime, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("User logged in successfully.", zap.Int64("user_id", user.ID))
	return tokenString, expirationTime, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// PromoteToAdmin grants the admin role. It reports false when the user already had it.
func (s *authService) PromoteToAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user == nil {
		return false, ErrUserNotFound
	}
	if user.IsAdmin() {
		return false, nil
	}

	if err := s.repo.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to promote user: %w", err)
	}

	s.logger.Info("User promoted to admin", zap.Int64("user_id", user.ID))
	return true, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
