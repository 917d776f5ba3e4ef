package auth

import "context"

type AuthService interface {
	// Login checks the password of an ACTIVE account and issues an access token
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
}
