package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		Service:        jwtService,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest) (auth.LoginResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	// Only ACTIVE accounts can sign in
	userData, err := a.UserRepository.GetActiveByLogin(ctx, loginReq.UsernameOrEmail)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get user by login: %w", err)
	}

	// Cek password
	if userData.PasswordHash == "" {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}

	if err := a.UserRepository.TouchLastLogin(ctx, userData.ID); err != nil {
		return auth.LoginResponse{}, err
	}

	roles := userData.Roles
	if roles == nil {
		roles = []string{}
	}
	// An account without grants acts with its primary role
	tokenRoles := roles
	if len(tokenRoles) == 0 {
		tokenRoles = []string{userData.PrimaryRole()}
	}
	token, expiresAt, err := a.Service.GenerateAccessToken(userData.ID, userData.Username, tokenRoles)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	slog.InfoContext(ctx, "user logged in", "user_id", userData.ID)

	return auth.LoginResponse{
		UserID:       userData.ID,
		Username:     userData.Username,
		Email:        userData.Email,
		Role:         userData.PrimaryRole(),
		Roles:        roles,
		Status:       string(userData.Status),
		DepartmentID: userData.DepartmentID,
		AccessToken:  token,
		ExpiresAt:    expiresAt,
	}, nil
}
