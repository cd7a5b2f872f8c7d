package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for datachat-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Engine database (sessions, embeddings) - PostgreSQL
	Database DatabaseConfig `yaml:"database"`

	// Target datasource the generated SQL runs against
	Datasource DatasourceConfig `yaml:"datasource"`

	// Language model endpoints
	AI AIConfig `yaml:"ai"`

	// Retrieval tuning
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// MigrationsPath points at the engine DB migration files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// DatabaseConfig holds the engine's own PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"datachat"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"datachat_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
}

// URL builds a postgres connection URL for the engine database.
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// DatasourceConfig holds the connection settings for the queried database.
// An empty URL means no datasource is attached; text2sql runs will report
// that the database connection is not available instead of executing.
type DatasourceConfig struct {
	URL          string `yaml:"-" env:"DATASOURCE_URL"` // Secret - carries credentials
	MaxConns     int32  `yaml:"max_conns" env:"DATASOURCE_MAX_CONNS" env-default:"10"`
	DefaultLimit int    `yaml:"default_limit" env:"DATASOURCE_DEFAULT_LIMIT" env-default:"1000"`
}

// IsConfigured returns true if a target datasource is attached.
func (c *DatasourceConfig) IsConfigured() bool {
	return c.URL != ""
}

// AIConfig holds language model endpoint configuration.
// Provider selects the chat backend; embeddings always use an
// OpenAI-compatible endpoint since Anthropic does not serve embeddings.
type AIConfig struct {
	Provider    string  `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint    string  `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model       string  `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey      string  `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0.7"`

	EmbeddingEndpoint string `yaml:"embedding_endpoint" env:"AI_EMBEDDING_ENDPOINT" env-default:"https://api.openai.com/v1"`
	EmbeddingModel    string `yaml:"embedding_model" env:"AI_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	EmbeddingAPIKey   string `yaml:"-" env:"AI_EMBEDDING_API_KEY"` // Secret - falls back to APIKey
}

// RetrievalConfig holds vector retrieval tuning.
type RetrievalConfig struct {
	SchemaTopK    int `yaml:"schema_top_k" env:"RETRIEVAL_SCHEMA_TOP_K" env-default:"5"`
	KnowledgeTopK int `yaml:"knowledge_top_k" env:"RETRIEVAL_KNOWLEDGE_TOP_K" env-default:"4"`
}

// Load reads configuration from config.yaml with environment overrides.
// If config.yaml does not exist, configuration comes from the environment alone.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown ai provider %q (expected openai or anthropic)", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai model is required")
	}
	if c.AI.EmbeddingAPIKey == "" {
		c.AI.EmbeddingAPIKey = c.AI.APIKey
	}
	return nil
}
