package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.BindAddr)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 5, cfg.Retrieval.SchemaTopK)
	assert.Equal(t, "test", cfg.Version)
	assert.False(t, cfg.Datasource.IsConfigured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("AI_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("AI_API_KEY", "secret")
	t.Setenv("DATASOURCE_URL", "postgres://app:pw@db:5432/app")

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.True(t, cfg.Datasource.IsConfigured())
	// Embedding key falls back to the chat key when unset.
	assert.Equal(t, "secret", cfg.AI.EmbeddingAPIKey)
}

func TestLoad_YAMLFile(t *testing.T) {
	chdirTemp(t)

	yaml := []byte("port: \"9000\"\nai:\n  model: gpt-4o\nretrieval:\n  schema_top_k: 8\n")
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), yaml, 0o644))

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, 8, cfg.Retrieval.SchemaTopK)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AI_PROVIDER", "bard")

	_, err := Load("test")
	assert.Error(t, err)
}

func TestDatabaseConfigURL(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: 5432,
		User: "datachat", Password: "pw",
		Database: "datachat_engine", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://datachat:pw@localhost:5432/datachat_engine?sslmode=disable", cfg.URL())

	cfg.Password = ""
	assert.Equal(t, "postgres://datachat@localhost:5432/datachat_engine?sslmode=disable", cfg.URL())
}
