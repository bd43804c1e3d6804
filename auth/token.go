// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/project-hub-backend/config"
	"github.com/rpupo63/project-hub-backend/errs"
	"github.com/rpupo63/project-hub-backend/models"
)

const defaultTokenTTL = 24 * time.Hour

type (
	Claims struct {
		UserID string `json:"id"`
		Email  string `json:"email"`
		Role   string `json:"role"`
		jwt.RegisteredClaims
	}
	// Principal is the verified identity behind a request.
	Principal struct {
		UserID uuid.UUID
		Email  string
		Role   string
	}
)

type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenManager(secretKey string, ttl time.Duration) (*TokenManager, error) {
	if secretKey == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{secretKey: []byte(secretKey), ttl: ttl}, nil
}

// NewTokenManagerFromConfig reads JWT_SECRET and JWT_EXPIRATION_HOURS.
func NewTokenManagerFromConfig(c map[string]string) (*TokenManager, error) {
	hours := config.GetInt(c, "JWT_EXPIRATION_HOURS", 24)
	return NewTokenManager(config.GetString(c, "JWT_SECRET", ""), time.Duration(hours)*time.Hour)
}

// Issue signs a token for user.
func (tm *TokenManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm and expiry of requestToken.
func (tm *TokenManager) Verify(requestToken string) (Principal, error) {
	if requestToken == "" {
		return Principal{}, errs.NewMissingTokenError()
	}

	claims := Claims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return tm.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, errs.NewTokenExpiredError()
		}
		return Principal{}, errs.NewInvalidTokenError(err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Principal{}, errs.NewInvalidTokenError(fmt.Errorf("token subject: %w", err))
	}

	return Principal{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}
