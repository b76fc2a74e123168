// Package config loads sqlask configuration from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/sqlask/internal/llm"
)

// Config holds application configuration values.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Schema   SchemaConfig   `yaml:"schema"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects the analytics database.
type DatabaseConfig struct {
	Driver       string        `yaml:"driver" validate:"required,oneof=postgres pgx sqlite sqlite3"`
	DSN          string        `yaml:"dsn" validate:"required"`
	MaxRows      int           `yaml:"max_rows" validate:"gte=1,lte=100000"`
	QueryTimeout time.Duration `yaml:"query_timeout" validate:"gt=0"`
}

// LLMConfig configures the language model.
type LLMConfig struct {
	Provider  string        `yaml:"provider" validate:"required,oneof=openai anthropic gemini"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxTokens int           `yaml:"max_tokens" validate:"gte=0"`
}

// SchemaConfig controls the schema description given to the model.
type SchemaConfig struct {
	SampleRows int `yaml:"sample_rows" validate:"gte=0,lte=50"`
}

// ServerConfig configures `sqlask serve`.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// ErrMissingAPIKey is returned by RequireLLM when no key is configured.
var ErrMissingAPIKey = errors.New("LLM_API_KEY environment variable must be set")

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:       "postgres",
			DSN:          "postgres://localhost/postgres?sslmode=disable",
			MaxRows:      1000,
			QueryTimeout: 8 * time.Second,
		},
		LLM: LLMConfig{
			Provider:  llm.ProviderOpenAI,
			Timeout:   60 * time.Second,
			MaxTokens: 1024,
		},
		Schema: SchemaConfig{SampleRows: 3},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration. path may be empty, in which case no YAML
// file is read. A .env file in the working directory is loaded if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RequireLLM reports whether the model can be reached with this configuration.
func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// LLMClientConfig converts to the llm package's configuration.
func (c *Config) LLMClientConfig() llm.Config {
	return llm.Config{
		Provider: c.LLM.Provider,
		APIKey:   c.LLM.APIKey,
		Model:    c.LLM.Model,
		BaseURL:  c.LLM.BaseURL,
		Timeout:  c.LLM.Timeout,
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Database.Driver, "SQLASK_DB_DRIVER", "DB_DRIVER")
	setString(&cfg.Database.DSN, "SQLASK_DB_DSN", "DB_DSN", "DATABASE_URL")
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.Server.Addr, "SQLASK_ADDR", "ADDR")
	setString(&cfg.Log.Level, "SQLASK_LOG_LEVEL")
	setString(&cfg.Log.Format, "SQLASK_LOG_FORMAT")

	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := setInt(&cfg.Database.MaxRows, "SQLASK_MAX_ROWS"); err != nil {
		return err
	}
	if err := setInt(&cfg.Schema.SampleRows, "SQLASK_SAMPLE_ROWS"); err != nil {
		return err
	}
	if err := setInt(&cfg.LLM.MaxTokens, "LLM_MAX_TOKENS"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Database.QueryTimeout, "SQLASK_QUERY_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT")
}

// lookup returns the first non-empty variable among keys.
func lookup(keys ...string) (string, bool) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, true
		}
	}
	return "", false
}

func setString(dst *string, keys ...string) {
	if v, ok := lookup(keys...); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
