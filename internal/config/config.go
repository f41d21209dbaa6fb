// Package config loads docgraph settings.
//
// Values come from built-in defaults, an optional YAML file, and
// environment variables with the DOCGRAPH_ prefix, in increasing order of
// precedence. Nested keys map to variables by replacing "." with "_", so
// server.port is DOCGRAPH_SERVER_PORT.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCGRAPH"

// Config holds all configuration settings.
type Config struct {
	Storage    StorageConfig
	Backup     BackupConfig
	Server     ServerConfig
	Security   SecurityConfig
	LLM        LLMConfig
	Log        LogConfig
	Query      QueryConfig
	Extraction ExtractionConfig
}

// StorageConfig locates the graph snapshot and the sample corpus.
type StorageConfig struct {
	DataDir   string // default: ./data
	GraphFile string // default: knowledge_graph.json, relative to DataDir
	SampleDir string // default: ./data/bank_policies
}

// GraphPath resolves GraphFile against DataDir.
func (s StorageConfig) GraphPath() string {
	if filepath.IsAbs(s.GraphFile) {
		return s.GraphFile
	}
	return filepath.Join(s.DataDir, s.GraphFile)
}

// BackupConfig controls the copies kept of the graph file before each save.
type BackupConfig struct {
	Enabled bool   // default: true
	Dir     string // default: backups, relative to Storage.DataDir

	// Copies kept per age tier.
	Hourly  int // default: 24
	Daily   int // default: 7
	Weekly  int // default: 4
	Monthly int // default: 12
}

// Path resolves Dir against dataDir.
func (b BackupConfig) Path(dataDir string) string {
	if filepath.IsAbs(b.Dir) {
		return b.Dir
	}
	return filepath.Join(dataDir, b.Dir)
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host string // default: 127.0.0.1
	Port int    // default: 6464

	// RequestsPerSecond and Burst configure per-client rate limiting.
	RequestsPerSecond float64 // default: 20
	Burst             int     // default: 40
}

// Addr joins host and port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains authentication settings.
type SecurityConfig struct {
	Mode     string // development or production (default: development)
	APIToken string // required in production
}

// LLMConfig configures the chat assistant.
type LLMConfig struct {
	Provider          string        // anthropic or none (default: anthropic)
	APIKey            string        // falls back to ANTHROPIC_API_KEY
	Model             string        // default: claude-3-5-haiku-20241022
	Timeout           time.Duration // default: 60s
	RequestsPerSecond float64       // default: 1
	Burst             int           // default: 3
}

// LogConfig configures the optional rotating log file.
type LogConfig struct {
	File       string // empty logs to stderr only
	MaxSizeMB  int    // default: 10
	MaxBackups int    // default: 3
	MaxAgeDays int    // default: 28
	Compress   bool
}

// QueryConfig tunes retrieval.
type QueryConfig struct {
	MaxChunks             int     // default: 5
	MinKeywordLen         int     // default: 4
	DirectAnswerThreshold float64 // default: 0.5
}

// ExtractionConfig tunes the policy strategy.
type ExtractionConfig struct {
	LinkPolicies      bool // default: true
	DedupePolicyLinks bool // default: false
}

var defaults = map[string]interface{}{
	"storage.data_dir":   "./data",
	"storage.graph_file": "knowledge_graph.json",
	"storage.sample_dir": "./data/bank_policies",

	"backup.enabled": true,
	"backup.dir":     "backups",
	"backup.hourly":  24,
	"backup.daily":   7,
	"backup.weekly":  4,
	"backup.monthly": 12,

	"server.host":                "127.0.0.1",
	"server.port":                6464,
	"server.requests_per_second": 20.0,
	"server.burst":               40,

	"security.mode":      "development",
	"security.api_token": "",

	"llm.provider":            "anthropic",
	"llm.api_key":             "",
	"llm.model":               "claude-3-5-haiku-20241022",
	"llm.timeout":             "60s",
	"llm.requests_per_second": 1.0,
	"llm.burst":               3,

	"log.file":         "",
	"log.max_size_mb":  10,
	"log.max_backups":  3,
	"log.max_age_days": 28,
	"log.compress":     false,

	"query.max_chunks":              5,
	"query.min_keyword_len":         4,
	"query.direct_answer_threshold": 0.5,

	"extraction.link_policies":       true,
	"extraction.dedupe_policy_links": false,
}

// LoadConfig reads the YAML file at path, when path is non-empty, and
// applies environment overrides. A missing file is an error; an empty
// path uses defaults and the environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{
		Storage: StorageConfig{
			DataDir:   v.GetString("storage.data_dir"),
			GraphFile: v.GetString("storage.graph_file"),
			SampleDir: v.GetString("storage.sample_dir"),
		},
		Backup: BackupConfig{
			Enabled: v.GetBool("backup.enabled"),
			Dir:     v.GetString("backup.dir"),
			Hourly:  v.GetInt("backup.hourly"),
			Daily:   v.GetInt("backup.daily"),
			Weekly:  v.GetInt("backup.weekly"),
			Monthly: v.GetInt("backup.monthly"),
		},
		Server: ServerConfig{
			Host:              v.GetString("server.host"),
			Port:              v.GetInt("server.port"),
			RequestsPerSecond: v.GetFloat64("server.requests_per_second"),
			Burst:             v.GetInt("server.burst"),
		},
		Security: SecurityConfig{
			Mode:     v.GetString("security.mode"),
			APIToken: v.GetString("security.api_token"),
		},
		LLM: LLMConfig{
			Provider:          v.GetString("llm.provider"),
			APIKey:            v.GetString("llm.api_key"),
			Model:             v.GetString("llm.model"),
			Timeout:           v.GetDuration("llm.timeout"),
			RequestsPerSecond: v.GetFloat64("llm.requests_per_second"),
			Burst:             v.GetInt("llm.burst"),
		},
		Log: LogConfig{
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
			Compress:   v.GetBool("log.compress"),
		},
		Query: QueryConfig{
			MaxChunks:             v.GetInt("query.max_chunks"),
			MinKeywordLen:         v.GetInt("query.min_keyword_len"),
			DirectAnswerThreshold: v.GetFloat64("query.direct_answer_threshold"),
		},
		Extraction: ExtractionConfig{
			LinkPolicies:      v.GetBool("extraction.link_policies"),
			DedupePolicyLinks: v.GetBool("extraction.dedupe_policy_links"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Security.Mode {
	case "development":
	case "production":
		if c.Security.APIToken == "" {
			errs = append(errs, errors.New("security.api_token is required in production mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("security.mode %q must be development or production", c.Security.Mode))
	}
	switch c.LLM.Provider {
	case "anthropic", "none":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q must be anthropic or none", c.LLM.Provider))
	}
	if c.Backup.Enabled && (c.Backup.Hourly < 0 || c.Backup.Daily < 0 || c.Backup.Weekly < 0 || c.Backup.Monthly < 0) {
		errs = append(errs, errors.New("backup retention counts must not be negative"))
	}
	if c.Storage.GraphFile == "" {
		errs = append(errs, errors.New("storage.graph_file must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
