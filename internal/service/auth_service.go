package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"docscan/internal/auth"
	"docscan/internal/errors"
	"docscan/internal/model"
	"docscan/internal/repository"
)

const (
	bcryptCost        = 10
	minUsernameLength = 3
	maxUsernameLength = 50
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordBytes = 72
)

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, claims *auth.Claims) error
	IsRevoked(ctx context.Context, tokenID string) bool
}

type authService struct {
	userRepo       repository.UserRepository
	jwtService     *auth.JWTService
	tokenStore     auth.TokenStoreInterface
	defaultCredits int
	now            func() time.Time
}

// NewAuthService creates a new authentication service. New users start with defaultCredits.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, defaultCredits int) AuthService {
	return &authService{
		userRepo:       userRepo,
		jwtService:     jwtService,
		tokenStore:     tokenStore,
		defaultCredits: defaultCredits,
		now:            time.Now,
	}
}

// Register creates a new user with hashed password.
func (s *authService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.ErrMissingCredentials
	}
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, errors.Validation(fmt.Sprintf("username must be %d to %d characters", minUsernameLength, maxUsernameLength))
	}
	if len(password) > maxPasswordBytes {
		return nil, errors.Validation(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, errors.ErrUserAlreadyExists
	}
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Storage("check user existence", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Credits:      s.defaultCredits,
		LastResetAt:  s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUserAlreadyExists
		}
		return nil, errors.Storage("create user", err)
	}

	return user, nil
}

// Login authenticates a user and returns a bearer token.
func (s *authService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, errors.ErrMissingCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errors.ErrInvalidCredentials
		}
		return "", nil, errors.Storage("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return errors.ErrInvalidToken
	}
	return s.tokenStore.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

func (s *authService) IsRevoked(ctx context.Context, tokenID string) bool {
	return s.tokenStore.IsRevoked(ctx, tokenID)
}
