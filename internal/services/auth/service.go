// Package auth is the identity collaborator: registration, credential checks
// and JWT issuance. The ledger engine never talks to this package; it only
// receives account identifiers resolved here.
package auth

import (
	"context"
	"errors"
	"fmt"

	"centavo/internal/models"
	"centavo/internal/repositories"
	"centavo/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type Service interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uint) error
	GetUserTokenVersion(ctx context.Context, userID uint) (int, error)
}

type service struct {
	users         repositories.UserRepository
	jwtSecret     string
	refreshSecret string
}

func NewService(users repositories.UserRepository, jwtSecret, refreshSecret string) Service {
	if users == nil {
		panic("user repository is required")
	}
	return &service{users: users, jwtSecret: jwtSecret, refreshSecret: refreshSecret}
}

// Register creates the user and their zero-balance account.
func (s *service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := utils.GenerateTokens(s.claimsFor(user), s.jwtSecret, s.refreshSecret)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}
	return user, access, refresh, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := utils.ParseToken(refreshToken, s.refreshSecret)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", "", ErrInvalidCredentials
	}

	return utils.GenerateTokens(s.claimsFor(user), s.jwtSecret, s.refreshSecret)
}

// Logout bumps the token version, invalidating every outstanding token.
func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.users.IncrementTokenVersion(ctx, userID)
}

func (s *service) GetUserTokenVersion(ctx context.Context, userID uint) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}

func (s *service) claimsFor(user *models.User) *models.UserClaims {
	claims := &models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	}
	if user.Account != nil {
		claims.AccountID = user.Account.ID
	}
	return claims
}
