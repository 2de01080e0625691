package service

import (
	"context"

	"shop-catalog/internal/domain"
	"shop-catalog/internal/repository"
)

// UserService exposes the caller's own profile
type UserService interface {
	GetUserByID(ctx context.Context, userID int64) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
