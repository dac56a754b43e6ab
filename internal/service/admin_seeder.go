package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"docscan/internal/errors"
	"docscan/internal/model"
	"docscan/internal/repository"
)

// SeedOutcome describes what EnsureAdmin did.
type SeedOutcome string

const (
	SeedCreated SeedOutcome = "created"
	SeedUpdated SeedOutcome = "updated"
	SeedSkipped SeedOutcome = "skipped"
)

// AdminSeed is the account EnsureAdmin provisions.
type AdminSeed struct {
	Username string
	Password string
	Credits  int
	// Force resets password and credits of an existing account.
	Force bool
}

// EnsureAdmin creates the admin account, or promotes and updates an existing
// one when Force is set.
func EnsureAdmin(ctx context.Context, repo repository.UserRepository, seed AdminSeed) (SeedOutcome, error) {
	if seed.Username == "" || seed.Password == "" {
		return "", errors.ErrMissingCredentials
	}

	existing, err := repo.FindByUsername(ctx, seed.Username)
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return "", errors.Storage("find admin", err)
	}
	if existing != nil && !seed.Force {
		return SeedSkipped, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	if existing != nil {
		existing.PasswordHash = string(hash)
		existing.Credits = seed.Credits
		existing.IsAdmin = true
		if err := repo.Update(ctx, existing); err != nil {
			return "", errors.Storage("update admin", err)
		}
		return SeedUpdated, nil
	}

	admin := &model.User{
		Username:     seed.Username,
		PasswordHash: string(hash),
		Credits:      seed.Credits,
		IsAdmin:      true,
		LastResetAt:  time.Now().UTC(),
	}
	if err := repo.Create(ctx, admin); err != nil {
		return "", errors.Storage("create admin", err)
	}
	return SeedCreated, nil
}
