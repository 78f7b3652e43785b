package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCmd builds a throwaway command with the shared config flags,
// resetting the package flag variables so tests don't bleed into each
// other.
func newTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	flagConfigPath = ""
	flagGeminiKey = ""
	flagTavilyKey = ""
	flagRenderURL = ""
	flagModel = ""
	flagFetchWorkers = 0
	flagDev = false

	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addConfigFlags(cmd)
	return cmd
}

func TestResolveConfigFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-env")
	t.Setenv("TAVILY_API_KEY", "tav-env")
	t.Setenv("RENDER_SERVICE_URL", "http://render.local")

	cmd := newTestCmd(t)
	require.NoError(t, cmd.Execute())

	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "gem-env", cfg.GeminiAPIKey)
	assert.Equal(t, "tav-env", cfg.TavilyAPIKey)
	assert.Equal(t, "http://render.local", cfg.RenderServiceURL)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	assert.Equal(t, 4, cfg.FetchWorkers)
	assert.Equal(t, 8080, cfg.Port)
}

func TestResolveConfigFlagOverridesFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("RENDER_SERVICE_URL", "")

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"gemini_api_key": "gem-file",
		"tavily_api_key": "tav-file",
		"render_service_url": "http://file.local",
		"model": "gemini-1.5-pro",
		"fetch_workers": 2
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cmd := newTestCmd(t)
	cmd.SetArgs([]string{"--config", path, "--model", "gemini-2.0-flash", "--fetch-workers", "8"})
	require.NoError(t, cmd.Execute())

	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "gem-file", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model, "explicit flag wins over file")
	assert.Equal(t, 8, cfg.FetchWorkers)
	assert.Equal(t, "http://file.local", cfg.RenderServiceURL)
}

func TestResolveConfigMissingKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("RENDER_SERVICE_URL", "")

	cmd := newTestCmd(t)
	require.NoError(t, cmd.Execute())

	_, err := resolveConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini_api_key")
}
