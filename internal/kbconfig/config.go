// Package kbconfig loads and validates kbmcp's configuration: storage
// location, search tuning, and chunking parameters, layered from defaults,
// a YAML file, and environment variables.
package kbconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete kbmcp configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Search   SearchConfig   `yaml:"search" json:"search"`
	Chunking ChunkingConfig `yaml:"chunking" json:"chunking"`
	Server   ServerConfig   `yaml:"server" json:"server"`
}

// StorageConfig configures where the store file and index subdirectories live.
type StorageConfig struct {
	// Path is where the SQLite store file lives.
	Path string `yaml:"path" json:"path"`
	// IndexDir is the root of the index subdirectories (e.g. <index_dir>/chunks).
	IndexDir string `yaml:"index_dir" json:"index_dir"`
}

// SearchConfig configures two-phase search tuning.
type SearchConfig struct {
	MinRelevance     float64 `yaml:"min_relevance" json:"min_relevance"`
	MaxResults       int     `yaml:"max_results" json:"max_results"`
	EnableSemantic   bool    `yaml:"enable_semantic" json:"enable_semantic"`
	EnableKeyword    bool    `yaml:"enable_keyword" json:"enable_keyword"`
	ResultGrouping   bool    `yaml:"result_grouping" json:"result_grouping"`
	HighlightMatches bool    `yaml:"highlight_matches" json:"highlight_matches"`

	// MergeAlpha is the keyword-weight fraction in the max-normalized
	// weighted-sum merge (alpha*kw + (1-alpha)*semantic). Pinned at 0.6
	// per the documented normalization decision; exposed here so a
	// deployment can retune without a code change.
	MergeAlpha float64 `yaml:"merge_alpha" json:"merge_alpha"`
}

// ChunkingConfig configures the three-tier chunker.
type ChunkingConfig struct {
	MinChunkSize int     `yaml:"min_chunk_size" json:"min_chunk_size"`
	MaxChunkSize int     `yaml:"max_chunk_size" json:"max_chunk_size"`
	OverlapRatio float64 `yaml:"overlap_ratio" json:"overlap_ratio"`
}

// ServerConfig configures the MCP server transport and CLI log level.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// defaultConfigFileNames are tried in order against a project directory.
var defaultConfigFileNames = []string{".kbmcp.yaml", ".kbmcp.yml"}

// New returns a Config populated with sensible defaults.
func New() *Config {
	return &Config{
		Version: 1,
		Storage: StorageConfig{
			Path:     defaultStoragePath(),
			IndexDir: defaultIndexDir(),
		},
		Search: SearchConfig{
			MinRelevance:     0.1,
			MaxResults:       50,
			EnableSemantic:   true,
			EnableKeyword:    true,
			ResultGrouping:   false,
			HighlightMatches: true,
			MergeAlpha:       0.6,
		},
		Chunking: ChunkingConfig{
			MinChunkSize: 100,
			MaxChunkSize: 1500,
			OverlapRatio: 0.2,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".kbmcp", "store.db")
	}
	return filepath.Join(home, ".kbmcp", "store.db")
}

func defaultIndexDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".kbmcp", "index")
	}
	return filepath.Join(home, ".kbmcp", "index")
}

// Load builds a Config from defaults, an optional project config file in
// dir, then environment variable overrides (highest precedence), and
// validates the result.
func Load(dir string) (*Config, error) {
	cfg := New()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range defaultConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero values from other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Storage.Path != "" {
		c.Storage.Path = other.Storage.Path
	}
	if other.Storage.IndexDir != "" {
		c.Storage.IndexDir = other.Storage.IndexDir
	}

	if other.Search.MinRelevance != 0 {
		c.Search.MinRelevance = other.Search.MinRelevance
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.MergeAlpha != 0 {
		c.Search.MergeAlpha = other.Search.MergeAlpha
	}
	c.Search.EnableSemantic = other.Search.EnableSemantic || c.Search.EnableSemantic
	c.Search.EnableKeyword = other.Search.EnableKeyword || c.Search.EnableKeyword
	c.Search.ResultGrouping = other.Search.ResultGrouping || c.Search.ResultGrouping
	c.Search.HighlightMatches = other.Search.HighlightMatches || c.Search.HighlightMatches

	if other.Chunking.MinChunkSize != 0 {
		c.Chunking.MinChunkSize = other.Chunking.MinChunkSize
	}
	if other.Chunking.MaxChunkSize != 0 {
		c.Chunking.MaxChunkSize = other.Chunking.MaxChunkSize
	}
	if other.Chunking.OverlapRatio != 0 {
		c.Chunking.OverlapRatio = other.Chunking.OverlapRatio
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies KBMCP_* environment variable overrides, the
// highest-precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KBMCP_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("KBMCP_INDEX_DIR"); v != "" {
		c.Storage.IndexDir = v
	}
	if v := os.Getenv("KBMCP_MIN_RELEVANCE"); v != "" {
		if f, err := parseFloat64(v); err == nil && f >= 0 && f <= 1 {
			c.Search.MinRelevance = f
		}
	}
	if v := os.Getenv("KBMCP_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("KBMCP_MERGE_ALPHA"); v != "" {
		if f, err := parseFloat64(v); err == nil && f >= 0 && f <= 1 {
			c.Search.MergeAlpha = f
		}
	}
	if v := os.Getenv("KBMCP_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("KBMCP_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
}

func parseFloat64(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// Validate checks the configuration for internally-consistent values.
func (c *Config) Validate() error {
	if c.Search.MinRelevance < 0 || c.Search.MinRelevance > 1 {
		return fmt.Errorf("search.min_relevance must be between 0 and 1, got %f", c.Search.MinRelevance)
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be non-negative, got %d", c.Search.MaxResults)
	}
	if c.Search.MergeAlpha < 0 || c.Search.MergeAlpha > 1 {
		return fmt.Errorf("search.merge_alpha must be between 0 and 1, got %f", c.Search.MergeAlpha)
	}
	if c.Chunking.MinChunkSize <= 0 {
		return fmt.Errorf("chunking.min_chunk_size must be positive, got %d", c.Chunking.MinChunkSize)
	}
	if c.Chunking.MaxChunkSize < c.Chunking.MinChunkSize {
		return fmt.Errorf("chunking.max_chunk_size (%d) must be >= min_chunk_size (%d)", c.Chunking.MaxChunkSize, c.Chunking.MinChunkSize)
	}
	if c.Chunking.OverlapRatio < 0 || c.Chunking.OverlapRatio >= 1 {
		return fmt.Errorf("chunking.overlap_ratio must be in [0,1), got %f", c.Chunking.OverlapRatio)
	}

	validTransports := map[string]bool{"stdio": true, "sse": true}
	if !validTransports[strings.ToLower(c.Server.Transport)] {
		return fmt.Errorf("server.transport must be 'stdio' or 'sse', got %s", c.Server.Transport)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
