// Package config provides explicit configuration loading for the
// service. Secrets and endpoints are passed into components at
// construction; nothing reads ambient process state after startup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults applied by MergeWithDefaults for unset values.
const (
	DefaultPort         = 8080
	DefaultModel        = "gemini-2.0-flash"
	DefaultFetchWorkers = 4
)

// Config holds everything the pipeline and its collaborators need.
// All fields are optional in the file; missing values use defaults or
// must be provided via CLI flags or environment variables.
type Config struct {
	// Secrets
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	TavilyAPIKey string `json:"tavily_api_key,omitempty"`

	// Collaborator endpoints
	RenderServiceURL string `json:"render_service_url,omitempty"`

	// Behavior
	Model        string `json:"model,omitempty"`
	FetchWorkers int    `json:"fetch_workers,omitempty"`
	Port         int    `json:"port,omitempty"`
	Development  bool   `json:"development,omitempty"`
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills unset secrets and endpoints from the environment.
// Explicit values always win over environment variables.
func (c *Config) FromEnv() {
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.TavilyAPIKey == "" {
		c.TavilyAPIKey = os.Getenv("TAVILY_API_KEY")
	}
	if c.RenderServiceURL == "" {
		c.RenderServiceURL = os.Getenv("RENDER_SERVICE_URL")
	}
}

// MergeWithDefaults returns a copy with zero-valued fields replaced by
// defaults.
func (c *Config) MergeWithDefaults() Config {
	result := *c
	if result.Model == "" {
		result.Model = DefaultModel
	}
	if result.FetchWorkers == 0 {
		result.FetchWorkers = DefaultFetchWorkers
	}
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	return result
}

// Validate checks that the configuration can actually drive a job.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: gemini_api_key is required (flag, file, or GEMINI_API_KEY)")
	}
	if c.TavilyAPIKey == "" {
		return fmt.Errorf("config error: tavily_api_key is required (flag, file, or TAVILY_API_KEY)")
	}
	if c.RenderServiceURL == "" {
		return fmt.Errorf("config error: render_service_url is required (flag, file, or RENDER_SERVICE_URL)")
	}
	if c.FetchWorkers < 0 {
		return fmt.Errorf("config error: fetch_workers must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	return nil
}
