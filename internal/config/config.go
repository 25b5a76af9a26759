// Package config handles the .kaleido directory and its config.yaml. Every
// user running the client gets a .kaleido/ folder in their home directory
// holding configuration, the token file and logs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// KaleidoDir is the name of the directory created in the user's home.
const KaleidoDir = ".kaleido"

const (
	defaultBaseURL         = "http://localhost:8000"
	defaultSummaryLength   = 25
	defaultSummaryCacheCap = 512
)

const defaultConfigYAML = `# kaleido client configuration
version: 1

api:
  # Base URL of the Kaleido backend, including any root path.
  base_url: http://localhost:8000

search:
  # Request the slower, higher quality reranking of recommendations.
  rerank: false
  # Word budget for generated product summaries.
  summary_length: 25
  # Maximum number of product summaries kept in memory per session.
  summary_cache_cap: 512
`

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
}

// SearchConfig captures search preferences.
type SearchConfig struct {
	Rerank          bool `yaml:"rerank"`
	SummaryLength   int  `yaml:"summary_length"`
	SummaryCacheCap int  `yaml:"summary_cache_cap"`
}

// FileConfig models .kaleido/config.yaml.
type FileConfig struct {
	Version int          `yaml:"version"`
	API     APIConfig    `yaml:"api"`
	Search  SearchConfig `yaml:"search"`
}

// Config holds the runtime configuration for the client.
type Config struct {
	// Dir is the .kaleido directory everything lives under.
	Dir string

	File FileConfig
}

// DefaultDir returns the .kaleido directory under the user's home.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, KaleidoDir), nil
}

// Init creates the .kaleido directory structure and seeds config.yaml when
// missing. Called on startup.
func Init(dir string) error {
	for _, sub := range []string{dir, filepath.Join(dir, "logs")} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return err
		}
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// Load reads the configuration from dir, applying defaults for anything the
// file leaves out.
func Load(dir string) (*Config, error) {
	cfg := &Config{Dir: dir, File: defaultFileConfig()}

	data, err := os.ReadFile(cfg.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", cfg.Path(), err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", cfg.Path(), err)
	}
	parsed.applyDefaults()
	if err := parsed.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.File = parsed
	return cfg, nil
}

// Path returns the on-disk location of config.yaml.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, "config.yaml")
}

// TokenPath returns where the bearer token is stored.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, "token")
}

// LogPath returns the session journey log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, "logs", "journey.log")
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.File.API.BaseURL, "/")
}

// SetRerank updates the default rerank preference and persists it.
func (c *Config) SetRerank(rerank bool) error {
	c.File.Search.Rerank = rerank
	return c.save()
}

func (c *Config) save() error {
	c.File.applyDefaults()
	if err := c.File.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("config: ensure dir: %w", err)
	}
	data, err := yaml.Marshal(c.File)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.Path(), data, 0o644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		API:     APIConfig{BaseURL: defaultBaseURL},
		Search: SearchConfig{
			SummaryLength:   defaultSummaryLength,
			SummaryCacheCap: defaultSummaryCacheCap,
		},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	fc.API.BaseURL = strings.TrimSpace(fc.API.BaseURL)
	if fc.API.BaseURL == "" {
		fc.API.BaseURL = defaultBaseURL
	}
	if fc.Search.SummaryLength <= 0 {
		fc.Search.SummaryLength = defaultSummaryLength
	}
	if fc.Search.SummaryCacheCap <= 0 {
		fc.Search.SummaryCacheCap = defaultSummaryCacheCap
	}
}

func (fc FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	parsed, err := url.Parse(fc.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", fc.API.BaseURL)
	}
	return nil
}
