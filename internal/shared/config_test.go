package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "http://localhost:5000/api", config.API.BaseURL)
	assert.Equal(t, 10, config.API.TimeoutSeconds)
	assert.Equal(t, 5.0, config.API.RateLimit)
	assert.Equal(t, "./stacks.db", config.Database.Path)
	assert.NotZero(t, config.Database.MaxOpenConns)
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses a valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[api]
base_url = "https://library.example.com/api"
timeout_seconds = 30
rate_limit = 2.5

[database]
path = "/tmp/test.db"
max_open_conns = 5
max_idle_conns = 2

[ui]
theme = "dark"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		config, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "https://library.example.com/api", config.API.BaseURL)
		assert.Equal(t, 30, config.API.TimeoutSeconds)
		assert.Equal(t, 2.5, config.API.RateLimit)
		assert.Equal(t, "/tmp/test.db", config.Database.Path)
		assert.Equal(t, "dark", config.UI.Theme)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("malformed file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[api\nbase_url ="), 0644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("writes the embedded template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		require.NoError(t, CreateConfigFile(path))

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().API.BaseURL, config.API.BaseURL)
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("# existing"), 0644))

		assert.Error(t, CreateConfigFile(path))
	})
}
