package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSubjectRequired = errors.New("subject is required")
	ErrSecretRequired  = errors.New("signing secret is required")
	ErrInvalidToken    = errors.New("invalid token")
)

// JWTProvider issues and reads the HS256 access tokens the API accepts.
// The API only verifies tokens; issuing lives here for tooling and tests.
type JWTProvider struct {
	Secret    string
	AccessTTL time.Duration
}

func NewJWTProvider(secret string, accessTTL time.Duration) *JWTProvider {
	return &JWTProvider{
		Secret:    secret,
		AccessTTL: accessTTL,
	}
}

func (p *JWTProvider) GenerateAccessToken(subject string) (string, error) {
	if strings.TrimSpace(p.Secret) == "" {
		return "", ErrSecretRequired
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", ErrSubjectRequired
	}

	claims := jwt.MapClaims{
		"sub":  subject,
		"type": "access",
		"iat":  time.Now().Unix(),
	}
	if p.AccessTTL != 0 {
		claims["exp"] = time.Now().Add(p.AccessTTL).Unix()
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(p.Secret))
}

// ParseAccessToken verifies token and returns its subject.
func (p *JWTProvider) ParseAccessToken(token string) (string, error) {
	if strings.TrimSpace(p.Secret) == "" {
		return "", ErrSecretRequired
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(p.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if claimType, ok := claims["type"].(string); ok && claimType != "access" {
		return "", ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
