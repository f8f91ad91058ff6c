package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopos/internal/domain"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewService("segredo", time.Hour)

	tok, err := svc.GenerateToken("user-1", domain.RoleManager)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewService("segredo", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	tok, err := svc.GenerateToken("user-1", domain.RoleCashier)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(tok)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tok, err := NewService("segredo", time.Hour).GenerateToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = NewService("outro", time.Hour).ValidateToken(tok)
	assert.Error(t, err)
}
