package main

import (
	"context"
	"strings"
	"testing"

	"github.com/cheerforge/cheerforge/internal/config"
	"github.com/cheerforge/cheerforge/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	secret := strings.Repeat("k", 40)
	t.Setenv("CHEERFORGE_DATABASE_URL", "postgres://u:p@localhost:5432/cheerforge")
	t.Setenv("CHEERFORGE_AUTH_JWT_SECRET", secret)

	token, err := issue("", "scoreboard")
	require.NoError(t, err)

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: secret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "scoreboard", claims.Subject)
}

func TestIssueWithoutSecret(t *testing.T) {
	t.Setenv("CHEERFORGE_DATABASE_URL", "postgres://u:p@localhost:5432/cheerforge")
	t.Setenv("CHEERFORGE_AUTH_JWT_SECRET", "")

	_, err := issue("", "scoreboard")
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestIssueEmptySubject(t *testing.T) {
	t.Setenv("CHEERFORGE_DATABASE_URL", "postgres://u:p@localhost:5432/cheerforge")
	t.Setenv("CHEERFORGE_AUTH_JWT_SECRET", strings.Repeat("k", 40))

	_, err := issue("", "")
	assert.ErrorIs(t, err, auth.ErrEmptySubject)
}
