package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenTypeTrigger marks tokens allowed to start payroll jobs.
const TokenTypeTrigger = "trigger"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrEmptySecret  = errors.New("jwt secret is empty")
)

type Service interface {
	GenerateTriggerToken(subject string, ttl time.Duration) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) (Service, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateTriggerToken signs a token for an operator or scheduler identified
// by subject.
func (j *JWTService) GenerateTriggerToken(subject string, ttl time.Duration) (token string, expiresAt int64, err error) {
	if ttl <= 0 {
		return "", 0, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	expiresAt = time.Now().Add(ttl).Unix()
	_, token, err = j.tokenAuth.Encode(map[string]interface{}{
		"sub":  subject,
		"type": TokenTypeTrigger,
		"exp":  expiresAt,
	})
	return token, expiresAt, err
}
