package jwt

import (
	"errors"
	"time"

	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidAlgorithm = errors.New("invalid signing algorithm")
	ErrEmptySecretKey   = errors.New("secret key cannot be empty")
	ErrWeakSecretKey    = errors.New("secret key must be at least 32 characters")
	ErrInvalidDuration  = errors.New("duration must be positive")
)

// Claims identify the user behind a request and the company it belongs to.
// TenantID is empty for the platform super admin.
type Claims struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId,omitempty"`
	jwt.RegisteredClaims
}

// Subject is the user a token is issued for
type Subject struct {
	UserID   uint
	Username string
	Role     string
	TenantID string
}

// Service signs and verifies HS256 access tokens
type Service struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewService creates a new JWT service
func NewService(cfg config.JWTConfig) (*Service, error) {
	switch {
	case cfg.SecretKey == "":
		return nil, ErrEmptySecretKey
	case len(cfg.SecretKey) < 32:
		return nil, ErrWeakSecretKey
	case cfg.Duration <= 0:
		return nil, ErrInvalidDuration
	}
	return &Service{secret: []byte(cfg.SecretKey), duration: cfg.Duration, now: time.Now}, nil
}

// GenerateToken issues a token for sub
func (s *Service) GenerateToken(sub Subject) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   sub.UserID,
		Username: sub.Username,
		Role:     sub.Role,
		TenantID: sub.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cnst.AppName,
			Subject:   sub.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses tokenString and returns its claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidAlgorithm
		}
		return s.secret, nil
	}, jwt.WithIssuer(cnst.AppName), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
