package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

var ErrMissingUserClaim = errors.New("token has no user_id claim")

type Service interface {
	GenerateAccessToken(userID int64, username string, roles []string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (*JWTService, error) {
	exp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	return &JWTService{
		accessTokenExpiration: exp,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID int64, username string, roles []string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id":  userID,
		"username": username,
		"roles":    roles,
		"type":     TokenTypeAccess,
		"exp":      expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// UserIDFromContext returns the user_id claim of the verified token in ctx.
func UserIDFromContext(ctx context.Context) (int64, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return 0, err
	}
	return userIDClaim(claims["user_id"])
}

// Numeric claims come back from the JSON decoder as float64 or json.Number.
func userIDClaim(v interface{}) (int64, error) {
	switch id := v.(type) {
	case float64:
		return int64(id), nil
	case int64:
		return id, nil
	case int:
		return int64(id), nil
	case json.Number:
		return id.Int64()
	default:
		return 0, ErrMissingUserClaim
	}
}
