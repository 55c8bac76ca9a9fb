package cli

import (
	"bytes"
	"strings"
	"testing"

	"viralclip/internal/util"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "postgres://u:p@localhost:5432/db")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("S3_URL", "http://localhost:9000")
	t.Setenv("S3_BUCKET", "clips")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_ACCESS_KEY", "a")
	t.Setenv("S3_SECRET_KEY", "s")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(zerolog.Nop())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenCommandSignsVerifiableToken(t *testing.T) {
	setRequiredEnv(t)

	out, err := execute(t, "token", "user-42", "--name", "Ada")
	require.NoError(t, err)

	claims, err := util.ValidateJWT(strings.TrimSpace(out), "cli-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
}

func TestTierSetRejectsUnknownTier(t *testing.T) {
	setRequiredEnv(t)

	_, err := execute(t, "tier", "set", "user-1", "gold")
	assert.ErrorContains(t, err, "invalid_tier")
}

func TestRenderEnqueueRejectsBadID(t *testing.T) {
	_, err := execute(t, "render", "enqueue", "abc")
	assert.ErrorContains(t, err, "invalid clip id")
}

func TestArgumentValidation(t *testing.T) {
	_, err := execute(t, "tier", "get")
	assert.Error(t, err)
}
