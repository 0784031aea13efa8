package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Version    string     `json:"version" mapstructure:"version"`
	SchemaDir  string     `json:"schema_dir" mapstructure:"schema_dir"` // folder containing .sql schema files
	OutputDir  string     `json:"output_dir" mapstructure:"output_dir"`
	Database   Database   `json:"database" mapstructure:"database"`
	Projects   []Project  `json:"projects" mapstructure:"projects"`
	Generation Generation `json:"generation" mapstructure:"generation"`
	Model      Model      `json:"model" mapstructure:"model"`
}

type Database struct {
	Provider string        `json:"provider" mapstructure:"provider"`
	URLEnv   string        `json:"url_env" mapstructure:"url_env"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Project binds a project id to the database its generated data targets.
// Provider and URLEnv fall back to the top-level database section.
type Project struct {
	ID        string `json:"id" mapstructure:"id"`
	Provider  string `json:"provider" mapstructure:"provider"`
	URLEnv    string `json:"url_env" mapstructure:"url_env"`
	SchemaDir string `json:"schema_dir" mapstructure:"schema_dir"`
}

type Generation struct {
	Workers             int    `json:"workers" mapstructure:"workers"` // 0 = half the CPU cores
	Locale              string `json:"locale" mapstructure:"locale"`
	ReferenceSampleSize int    `json:"reference_sample_size" mapstructure:"reference_sample_size"`
	SQLBatchSize        int    `json:"sql_batch_size" mapstructure:"sql_batch_size"`
}

type Model struct {
	Default    string        `json:"default" mapstructure:"default"` // vendor:model
	APIKeyEnv  string        `json:"api_key_env" mapstructure:"api_key_env"`
	BaseURL    string        `json:"base_url" mapstructure:"base_url"`
	OllamaURL  string        `json:"ollama_url" mapstructure:"ollama_url"`
	BatchDelay time.Duration `json:"batch_delay" mapstructure:"batch_delay"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
}

var supportedProviders = []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.SchemaDir == "" {
		c.SchemaDir = "db/schema"
	}
	if c.OutputDir == "" {
		c.OutputDir = "db/generated"
	}
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
	if c.Database.Timeout <= 0 {
		c.Database.Timeout = 10 * time.Second
	}
	if c.Generation.Locale == "" {
		c.Generation.Locale = "ko"
	}
	if c.Generation.ReferenceSampleSize <= 0 {
		c.Generation.ReferenceSampleSize = 1000
	}
	if c.Generation.SQLBatchSize <= 0 {
		c.Generation.SQLBatchSize = 100
	}
	if c.Model.Default == "" {
		c.Model.Default = "openai:gpt-4o-mini"
	}
	if c.Model.APIKeyEnv == "" {
		c.Model.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model.BaseURL == "" {
		c.Model.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model.OllamaURL == "" {
		c.Model.OllamaURL = "http://localhost:11434/v1"
	}
	if c.Model.BatchDelay <= 0 {
		c.Model.BatchDelay = 500 * time.Millisecond
	}
	if c.Model.Timeout <= 0 {
		c.Model.Timeout = 60 * time.Second
	}
	for i := range c.Projects {
		if c.Projects[i].Provider == "" {
			c.Projects[i].Provider = c.Database.Provider
		}
		if c.Projects[i].URLEnv == "" {
			c.Projects[i].URLEnv = c.Database.URLEnv
		}
		if c.Projects[i].SchemaDir == "" {
			c.Projects[i].SchemaDir = c.SchemaDir
		}
	}
}

func IsSupportedProvider(provider string) bool {
	for _, p := range supportedProviders {
		if provider == p {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if !IsSupportedProvider(c.Database.Provider) {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}
	seen := make(map[string]bool, len(c.Projects))
	for _, p := range c.Projects {
		if p.ID == "" {
			return fmt.Errorf("project id cannot be empty")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate project id: %s", p.ID)
		}
		seen[p.ID] = true
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	return nil
}

// Project looks up a project by id. An empty id, or a config that declares no
// projects, resolves to the top-level database section.
func (c *Config) Project(id string) (Project, bool) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p, true
		}
	}
	if id == "" || len(c.Projects) == 0 {
		return Project{
			ID:        id,
			Provider:  c.Database.Provider,
			URLEnv:    c.Database.URLEnv,
			SchemaDir: c.SchemaDir,
		}, true
	}
	return Project{}, false
}

func (p Project) DatabaseURL() (string, error) {
	dbURL := os.Getenv(p.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", p.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) APIKey() string {
	return os.Getenv(c.Model.APIKeyEnv)
}

func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.OutputDir} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SchemaFiles returns all .sql files in dir in directory order.
func SchemaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) && strings.HasSuffix(dir, ".sql") {
			return nil, fmt.Errorf("schema file %s not found: %w", dir, err)
		}
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			return []string{dir}, nil
		}
		return nil, fmt.Errorf("failed to read schema directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
