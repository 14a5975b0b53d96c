package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"gemini_api_key":"file-key","DATABASE_URL":"postgres://x","max_images":10}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.GeminiAPIKey)
	assert.Equal(t, "postgres://x", cfg.DatabaseURL)
	assert.Equal(t, 10, cfg.MaxImages)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", "llm_provider: local\nport: \"9000\"\nallow_origins:\n  - http://a\n")
	t.Setenv("PORT", "9100")
	t.Setenv("ALLOW_ORIGINS", "http://b,http://c")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, cfg.LLMProvider)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, []string{"http://b", "http://c"}, cfg.AllowOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Default().ImageDir, cfg.ImageDir)
}

func TestLoad_ImageGeneration(t *testing.T) {
	path := writeFile(t, "config.json", `{"image_model":"dall-e-3"}`)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "dall-e-3", cfg.ImageModel)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeFile(t, "config.json", `{`))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.json", `{"llm_provider":"openai"}`))
	assert.ErrorContains(t, err, "unknown llm provider")

	_, err = Load(writeFile(t, "config.json", `{"log_level":"loud"}`))
	assert.ErrorContains(t, err, "invalid log level")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}
