package jwt

import (
	"testing"
	"time"

	"github.com/dairyline/distributor/internal/common/config"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-very-long-secret-key-for-testing"

func newTestService(t *testing.T, d time.Duration) *Service {
	t.Helper()
	s, err := NewService(config.JWTConfig{SecretKey: testSecret, Duration: d})
	require.NoError(t, err)
	return s
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(config.JWTConfig{Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)
	_, err = NewService(config.JWTConfig{SecretKey: "short", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecretKey)
	_, err = NewService(config.JWTConfig{SecretKey: testSecret})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestService_GenerateAndValidate(t *testing.T) {
	s := newTestService(t, time.Hour)
	tok, err := s.GenerateToken(Subject{UserID: 42, Username: "alice", Role: "admin", TenantID: "001"})
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "001", claims.TenantID)
	assert.Equal(t, "distributor", claims.Issuer)
}

func TestService_Expired(t *testing.T) {
	s := newTestService(t, time.Minute)
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := s.GenerateToken(Subject{UserID: 1, Username: "bob"})
	require.NoError(t, err)

	s.now = time.Now
	claims, err := s.ValidateToken(tok)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_Rejects(t *testing.T) {
	s := newTestService(t, time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewService(config.JWTConfig{SecretKey: testSecret + "-other", Duration: time.Hour})
		require.NoError(t, err)
		tok, err := other.GenerateToken(Subject{UserID: 1})
		require.NoError(t, err)
		_, err = s.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := &Claims{UserID: 1, RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = s.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
