package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	EnvAPIBaseURL   = "IMG2XL_API_BASE_URL"
	EnvCohereAPIKey = "IMG2XL_COHERE_API_KEY"

	defaultAPIBaseURL  = "http://localhost:8000"
	defaultEmbedModel  = "embed-v4.0"
	defaultRerankModel = "rerank-v3.5"
	defaultEmbedDim    = 1024
)

type Config struct {
	APIBaseURL     string   `json:"api_base_url" validate:"required,http_url"`
	RequestTimeout Duration `json:"request_timeout,omitempty" validate:"gte=0"`
	CohereAPIKey   string   `json:"cohere_api_key,omitempty"`
	EmbedModel     string   `json:"embed_model"`
	RerankModel    string   `json:"rerank_model"`
	EmbedDim       int      `json:"embed_dim" validate:"gt=0"`
	ExportDir      string   `json:"export_dir,omitempty"`
}

// Duration is a time.Duration that reads and writes as a string ("30s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "img2xl"), nil
}

func configPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func DBPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "img2xl.db"), nil
}

func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "img2xl.log"), nil
}

// Exists reports whether a config file has been written.
func Exists() bool {
	path, err := configPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies environment overrides.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := defaultConfig()
		cfg.applyEnv()
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	cfg.applyEnv()

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.EmbedModel == "" {
		c.EmbedModel = defaultEmbedModel
	}
	if c.RerankModel == "" {
		c.RerankModel = defaultRerankModel
	}
	if c.EmbedDim == 0 {
		c.EmbedDim = defaultEmbedDim
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv(EnvCohereAPIKey); v != "" {
		c.CohereAPIKey = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ExportDirOrDefault returns the configured export directory, or the
// working directory when none is set.
func (c *Config) ExportDirOrDefault() string {
	if c.ExportDir != "" {
		return c.ExportDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	data = append(data, '\n')
	return os.WriteFile(path, data, 0600)
}

func defaultConfig() *Config {
	return &Config{
		APIBaseURL:  defaultAPIBaseURL,
		EmbedModel:  defaultEmbedModel,
		RerankModel: defaultRerankModel,
		EmbedDim:    defaultEmbedDim,
	}
}
