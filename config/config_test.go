package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "3", cfg.OpenProject.PhaseType)
	assert.Equal(t, "1", cfg.OpenProject.TaskType)
	assert.Equal(t, 3, cfg.Import.Attempts)
	assert.Equal(t, 2*time.Second, cfg.Import.RetryDelay.Duration())
	assert.Equal(t, time.Second, cfg.Import.Delay.Duration())
	assert.Equal(t, 3, cfg.Cleanup.Attempts)
	assert.Equal(t, 100, cfg.Cleanup.PageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Cleanup.Delay.Duration())
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	path := filepath.Join(t.TempDir(), "openproject-app-sheets.toml")
	content := `
[openproject]
url = "https://pm.example.com/api/v3"
api-key = "qwerty"
project = "3"
task-type = "7"
timeout = "10s"

[import]
delay = "250ms"

[cleanup]
attempts = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://pm.example.com/api/v3", cfg.OpenProject.URL)
	assert.Equal(t, "qwerty", cfg.OpenProject.APIKey)
	assert.Equal(t, "3", cfg.OpenProject.Project)
	assert.Equal(t, "3", cfg.OpenProject.PhaseType)
	assert.Equal(t, "7", cfg.OpenProject.TaskType)
	assert.Equal(t, 10*time.Second, cfg.OpenProject.Timeout.Duration())
	assert.Equal(t, 250*time.Millisecond, cfg.Import.Delay.Duration())
	assert.Equal(t, 3, cfg.Import.Attempts)
	assert.Equal(t, 5, cfg.Cleanup.Attempts)
}

func TestLoadWithMissingFile(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[openproject]\napi-key = \"from-file\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.OpenProject.APIKey)
}

func TestLoadWithInvalidSettings(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	tests := map[string]string{
		"duration": "[import]\nretry-delay = \"soon\"\n",
		"attempts": "[import]\nattempts = 0\n",
		"pagesize": "[cleanup]\npage-size = -1\n",
		"syntax":   "[openproject\n",
	}

	for name, content := range tests {
		path := filepath.Join(t.TempDir(), name+".toml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
