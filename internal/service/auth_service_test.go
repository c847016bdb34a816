package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthServiceForTest() *AuthService {
	return NewAuthService(zap.NewNop(), AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "qstreport",
	})
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newAuthServiceForTest()

	token, expiresAt, err := svc.IssueToken("op-1", "Superviseur CNS")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "op-1", claims.UserID)
	require.Equal(t, "Superviseur CNS", claims.Name)
	require.Equal(t, "qstreport", claims.Issuer)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService(zap.NewNop(), AuthConfig{AccessTokenSecret: "other", AccessTokenExpiry: time.Hour})
	token, _, err := issuer.IssueToken("op-1", "x")
	require.NoError(t, err)

	_, err = newAuthServiceForTest().ValidateToken(token)
	require.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := newAuthServiceForTest().ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newAuthServiceForTest()
	// The constructor floors non-positive expiries, set it after.
	svc.config.AccessTokenExpiry = -time.Minute
	token, _, err := svc.IssueToken("op-1", "x")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
