package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAuthService_RoundTrip(t *testing.T) {
	s := NewAuthService(testSecret, time.Hour)

	token, err := s.GenerateToken("ops-dashboard")
	require.NoError(t, err)

	subject, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-dashboard", subject)
}

func TestAuthService_EmptySubject(t *testing.T) {
	_, err := NewAuthService(testSecret, time.Hour).GenerateToken("")
	assert.Error(t, err)
}

func TestAuthService_Rejects(t *testing.T) {
	s := NewAuthService(testSecret, time.Hour)
	valid, err := s.GenerateToken("svc")
	require.NoError(t, err)

	other, err := NewAuthService("another-secret-another-secret-xx", time.Hour).GenerateToken("svc")
	require.NoError(t, err)

	expired := NewAuthService(testSecret, time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, err := expired.GenerateToken("svc")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "svc",
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	admin, err := s.GenerateToken("admin")
	require.NoError(t, err)
	// admin's header and claims carrying svc's signature.
	validParts := strings.Split(valid, ".")
	adminParts := strings.Split(admin, ".")
	tampered := adminParts[0] + "." + adminParts[1] + "." + validParts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", other},
		{"expired", expiredToken},
		{"unsigned", none},
		{"tampered", tampered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
