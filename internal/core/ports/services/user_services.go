package services

import (
	"context"

	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/dhanrajs/fx_exchange_app/internal/dto"
)

// UserSvcFacade manages staff users and credentials.
type UserSvcFacade interface {
	// CreateUser registers a new staff member with a bcrypt-hashed password.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// Authenticate verifies credentials and returns the user on success.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}
