package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cws.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeConfig(t, `
credentials {
  client_id     = "client"
  client_secret = env.CWS_CLIENT_SECRET
  refresh_token = env.CWS_REFRESH_TOKEN
}

item {
  id     = "abcdefghijklmnop"
  source = "dist/ext.zip"
  target = "trustedTesters"
}
`)
	environ := []string{"CWS_CLIENT_SECRET=s3cret", "CWS_REFRESH_TOKEN=1//refresh=="}

	// --- Act ---
	file, err := Load(context.Background(), path, environ)

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, file.Credentials)
	assert.Equal(t, Credentials{ClientID: "client", ClientSecret: "s3cret", RefreshToken: "1//refresh=="}, *file.Credentials)
	require.NotNil(t, file.Item)
	assert.Equal(t, "abcdefghijklmnop", file.Item.ID)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "dist", "ext.zip"), file.Item.Source)
	assert.Equal(t, "trustedTesters", file.Item.Target)
}

func TestLoad_OptionalBlocks(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `item { id = "x" }`)

	file, err := Load(context.Background(), path, nil)

	require.NoError(t, err)
	assert.Nil(t, file.Credentials)
	require.NotNil(t, file.Item)
	assert.Empty(t, file.Item.Source)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "syntax error", content: "item {\n id = ", wantErr: "failed to parse"},
		{name: "unknown attribute", content: `item { nonsense = "x" }`, wantErr: "failed to decode"},
		{name: "unset env var", content: `credentials { client_secret = env.NOT_SET }`, wantErr: "failed to decode"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(context.Background(), writeConfig(t, tc.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"), nil)
	require.Error(t, err)
}

func TestEvalContext_SkipsMalformedPairs(t *testing.T) {
	ctx := EvalContext([]string{"A=1", "broken", "=novalue", "B=x=y"})
	env := ctx.Variables["env"].AsValueMap()

	assert.Len(t, env, 2)
	assert.Equal(t, "1", env["A"].AsString())
	assert.Equal(t, "x=y", env["B"].AsString())
}
