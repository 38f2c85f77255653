package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/cwspublish/internal/app"
	"github.com/vk/cwspublish/internal/webstore"
)

func TestParse(t *testing.T) {
	t.Parallel()

	configDir := t.TempDir()
	configPath := filepath.Join(configDir, "cws.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(`
credentials {
  client_id     = "file-client"
  client_secret = env.CWS_CLIENT_SECRET
  refresh_token = "file-refresh"
}
item {
  id     = "file-item"
  source = "ext.zip"
  target = "trustedTesters"
}
`), 0o600))

	testCases := []struct {
		name           string
		args           []string
		environ        []string
		expectExit     bool
		expectErr      bool
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "Happy path with all flags",
			args: []string{
				"publish",
				"-source", "/tmp/ext.zip",
				"--extension-id=item1",
				"-client-id", "cid",
				"-client-secret", "csecret",
				"-refresh-token", "rtoken",
				"-target", "trustedTesters",
				"--log-level=debug",
				"--log-format=json",
			},
			expectedConfig: &app.Config{
				Command:      app.CommandPublish,
				ClientID:     "cid",
				ClientSecret: "csecret",
				RefreshToken: "rtoken",
				Source:       "/tmp/ext.zip",
				ExtensionID:  "item1",
				Target:       webstore.TargetTrustedTesters,
				LogFormat:    "json",
				LogLevel:     "debug",
			},
		},
		{
			name:    "Environment fills credentials and defaults apply",
			args:    []string{"upload", "-zip", "ext.zip"},
			environ: []string{"CWS_CLIENT_ID=env-client", "CWS_CLIENT_SECRET=env-secret", "CWS_REFRESH_TOKEN=env-refresh", "CWS_EXTENSION_ID=env-item"},
			expectedConfig: &app.Config{
				Command:      app.CommandUpload,
				ClientID:     "env-client",
				ClientSecret: "env-secret",
				RefreshToken: "env-refresh",
				Source:       "ext.zip",
				ExtensionID:  "env-item",
				Target:       webstore.TargetDefault,
				LogFormat:    "text",
				LogLevel:     "info",
			},
		},
		{
			name:    "Config file with flag and env overrides",
			args:    []string{"-config", configPath, "-client-id", "flag-client", "publish"},
			environ: []string{"CWS_CLIENT_SECRET=env-secret", "CWS_REFRESH_TOKEN=env-refresh"},
			expectedConfig: &app.Config{
				Command:      app.CommandPublish,
				ClientID:     "flag-client",
				ClientSecret: "env-secret",
				RefreshToken: "env-refresh",
				Source:       filepath.Join(configDir, "ext.zip"),
				ExtensionID:  "file-item",
				Target:       webstore.TargetTrustedTesters,
				LogFormat:    "text",
				LogLevel:     "info",
			},
		},
		{
			name:    "Testers flag overrides config target",
			args:    []string{"publish", "-config", configPath, "-testers=false"},
			environ: []string{"CWS_CLIENT_SECRET=s"},
			expectedConfig: &app.Config{
				Command:      app.CommandPublish,
				ClientID:     "file-client",
				ClientSecret: "s",
				RefreshToken: "file-refresh",
				Source:       filepath.Join(configDir, "ext.zip"),
				ExtensionID:  "file-item",
				Target:       webstore.TargetDefault,
				LogFormat:    "text",
				LogLevel:     "info",
			},
		},
		{
			name:       "Help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "Usage:")
			},
		},
		{
			name:       "No command prints usage",
			args:       []string{},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "Commands:")
			},
		},
		{name: "Unknown command", args: []string{"deploy", "-extension-id", "x"}, expectErr: true},
		{name: "Missing extension id", args: []string{"upload"}, expectErr: true},
		{name: "Invalid log format", args: []string{"upload", "-extension-id", "x", "-log-format=xml"}, expectErr: true},
		{name: "Invalid log level", args: []string{"upload", "-extension-id", "x", "-log-level=trace"}, expectErr: true},
		{name: "Invalid target", args: []string{"publish", "-extension-id", "x", "-target", "beta"}, expectErr: true},
		{name: "Conflicting target flags", args: []string{"publish", "-extension-id", "x", "-target", "default", "-testers"}, expectErr: true},
		{name: "Extra arguments", args: []string{"upload", "-extension-id", "x", "surplus"}, expectErr: true},
		{name: "Unknown flag", args: []string{"upload", "--no-such-flag"}, expectErr: true},
		{name: "Broken config file", args: []string{"upload", "-config", filepath.Join(configDir, "missing.hcl")}, expectErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			output := &bytes.Buffer{}

			// --- Act ---
			cfg, shouldExit, err := Parse(tc.args, output, tc.environ)

			// --- Assert ---
			if tc.expectErr {
				require.Error(t, err)
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				require.Equal(t, 2, exitErr.Code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectExit, shouldExit)

			if tc.checkOutput != nil {
				tc.checkOutput(t, output.String())
			}
			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, cfg); diff != "" {
					t.Errorf("Parse() config mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}
