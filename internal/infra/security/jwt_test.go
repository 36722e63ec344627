package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domuser "example.com/user-admin/internal/domain/user"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.GenerateToken("console", domuser.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "console", claims.Subject)
	require.Equal(t, domuser.RoleAdmin, claims.Role)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("one", time.Hour).GenerateToken("console", domuser.RoleAdmin)
	require.NoError(t, err)

	_, err = NewJWTService("two", time.Hour).ParseToken(token)
	require.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)
	token, err := svc.GenerateToken("console", domuser.RoleUser)
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	require.Error(t, err)
}
