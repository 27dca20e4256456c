package token

import (
	"errors"
	"fmt"
	"time"

	"edge/pkg/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSecret = errors.New("signing secret is empty")

// Issuer mints the access/refresh token pair returned on registration.
// It holds no per-token state; both tokens are self-contained HS256 JWTs.
type Issuer struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}
	if refreshTTL <= accessTTL {
		return nil, fmt.Errorf("refresh TTL (%s) must be longer than access TTL (%s)", refreshTTL, accessTTL)
	}
	return &Issuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

func (i *Issuer) Issue(user models.User) (models.TokenPair, error) {
	now := time.Now()

	access, err := i.sign(user, "access", now, now.Add(i.accessTTL))
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := i.sign(user, "refresh", now, now.Add(i.refreshTTL))
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(user models.User, tokenType string, issuedAt, expiresAt time.Time) (string, error) {
	if i.secret == "" {
		return "", ErrNoSecret
	}

	claims := jwt.MapClaims{
		"sub":        user.UUID,
		"user_id":    user.ID,
		"username":   user.Username,
		"token_type": tokenType,
		"iat":        issuedAt.Unix(),
		"exp":        expiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.secret))
}

// Parse validates a signed token and returns its claims. Expired or
// tampered tokens fail here; token_type is left to the caller to check.
func Parse(tokenStr, secret string) (jwt.MapClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return *token.Claims.(*jwt.MapClaims), nil
}
