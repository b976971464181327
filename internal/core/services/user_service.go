package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/apperrors"
	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	portsrepo "github.com/dhanrajs/fx_exchange_app/internal/core/ports/repositories"
	"github.com/dhanrajs/fx_exchange_app/internal/dto"
	"github.com/dhanrajs/fx_exchange_app/internal/middleware"
	"github.com/dhanrajs/fx_exchange_app/internal/utils"
	"github.com/google/uuid"
)

// ErrInvalidCredentials keeps "no such user" and "wrong password" indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserService manages staff users and credential checks.
type UserService struct {
	userRepo portsrepo.UserRepositoryFacade
}

func NewUserService(repo portsrepo.UserRepositoryFacade) *UserService {
	return &UserService{userRepo: repo}
}

func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, apperrors.NewAppError(500, "failed to hash password", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save user", slog.String("error", err.Error()), slog.String("username", user.Username))
		}
		return nil, err
	}

	logger.Info("User created", slog.String("user_id", user.UserID))
	return &user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
