package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/raceclub/portal/models"
	"github.com/raceclub/portal/repositories"
	"github.com/raceclub/portal/utils"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	IssueToken(user *models.User) (string, error)
}

type RegisterInput struct {
	ClubID    int    `json:"club_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	userRepo   repositories.UserRepository
	driverRepo repositories.DriverRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, driverRepo repositories.DriverRepository, jwtSecret string) AuthService {
	return &authService{
		userRepo:   userRepo,
		driverRepo: driverRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   24 * time.Hour,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if !utils.IsValidEmail(input.Email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidationFailed)
	}
	if len(input.Password) < utils.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrValidationFailed)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ClubID:       input.ClubID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         models.RoleMember,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Every account gets a self driver so the nomination workflow always
	// has at least one nominee to offer.
	self := &models.Driver{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Self:      true,
	}
	if err := s.driverRepo.Create(ctx, self); err != nil {
		return nil, fmt.Errorf("failed to create self driver: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"club_id": user.ClubID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
