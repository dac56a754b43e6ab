package service

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"docscan/internal/errors"
	"docscan/internal/model"
	"docscan/internal/repository"
)

// UserService exposes read access to user profiles.
type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	ledger LedgerService
}

// NewUserService constructs a UserService.
func NewUserService(repo repository.UserRepository, ledger LedgerService) UserService {
	return &userService{repo: repo, ledger: ledger}
}

// GetProfile applies a pending daily reset first so the balance shown is current.
func (s *userService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	if _, err := s.ledger.ResetIfStale(ctx, userID, s.ledger.Today()); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Storage("get profile", err)
	}
	return user, nil
}
