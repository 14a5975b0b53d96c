// Package config loads backend configuration from a JSON or YAML file and
// the environment. Environment variables (including those from a .env
// file) take precedence over the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

// Config represents the backend configuration.
type Config struct {
	Port           string   `json:"port" yaml:"port"`
	LLMProvider    string   `json:"llm_provider" yaml:"llm_provider"`
	GeminiAPIKey   string   `json:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiModel    string   `json:"gemini_model" yaml:"gemini_model"`
	LocalLLMURL    string   `json:"local_llm_url" yaml:"local_llm_url"`
	LocalLLMModel  string   `json:"local_llm_model" yaml:"local_llm_model"`
	LocalLLMAPIKey string   `json:"local_llm_api_key" yaml:"local_llm_api_key"`
	OpenAIAPIKey   string   `json:"openai_api_key" yaml:"openai_api_key"`
	ImageModel     string   `json:"image_model" yaml:"image_model"`
	DatabaseURL    string   `json:"DATABASE_URL" yaml:"database_url"`
	ImageDir       string   `json:"image_dir" yaml:"image_dir"`
	MaxImages      int      `json:"max_images" yaml:"max_images"`
	PublicURL      string   `json:"public_url" yaml:"public_url"`
	AllowOrigins   []string `json:"allow_origins" yaml:"allow_origins"`
	LogLevel       string   `json:"log_level" yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:         "8080",
		LLMProvider:  ProviderGemini,
		ImageDir:     "generated_recipes",
		MaxImages:    50,
		AllowOrigins: []string{"http://localhost:5173"},
		LogLevel:     "info",
	}
}

// Load reads path (if it exists) over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read %s: %w", path, err)
		default:
			if err := decode(path, data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Port, "PORT")
	set(&cfg.LLMProvider, "LLM_PROVIDER")
	set(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	set(&cfg.GeminiModel, "GEMINI_MODEL")
	set(&cfg.LocalLLMURL, "LOCAL_LLM_URL")
	set(&cfg.LocalLLMModel, "LOCAL_LLM_MODEL")
	set(&cfg.LocalLLMAPIKey, "LOCAL_LLM_API_KEY")
	set(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	set(&cfg.ImageModel, "IMAGE_MODEL")
	set(&cfg.DatabaseURL, "DATABASE_URL")
	set(&cfg.ImageDir, "IMAGE_DIR")
	set(&cfg.PublicURL, "PUBLIC_URL")
	set(&cfg.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("MAX_IMAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxImages = n
		}
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = strings.Split(v, ",")
	}
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderLocal:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLMProvider)
	}
	if c.Port == "" {
		return errors.New("port must be set")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// NewLogger returns a text logger writing to stderr at the given level.
func NewLogger(levelName string) *slog.Logger {
	level, err := ParseLevel(levelName)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
