package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/primeo/api/internal/models"
)

var (
	ErrTokenInvalid = errors.New("token invalide")
	ErrTokenExpired = errors.New("token expiré")
)

// Claims carried by access tokens.
type Claims struct {
	UserID uint        `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates access tokens and generates opaque
// refresh/reset tokens.
type TokenService struct {
	secret    []byte
	accessExp time.Duration
}

func NewTokenService(secret string, accessMinutes int) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		accessExp: time.Duration(accessMinutes) * time.Minute,
	}
}

// IssueAccess creates a signed short-lived access token for the user.
func (s *TokenService) IssueAccess(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateAccess parses and verifies an access token.
func (s *TokenService) ValidateAccess(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// NewOpaqueToken returns a random hex token for refresh/reset/verify purposes.
// Opaque tokens are persisted on the user and rotated on each use.
func NewOpaqueToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read only fails if the system entropy source is broken
		panic(err)
	}
	return hex.EncodeToString(buf)
}
