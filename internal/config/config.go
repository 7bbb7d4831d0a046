package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Config represents the critique configuration.
type Config struct {
	Provider       string        `json:"provider"`
	Model          string        `json:"model"`
	Format         string        `json:"format"`
	MaxChunkTokens int           `json:"maxChunkTokens"`
	MaxRetries     int           `json:"maxRetries"`
	FocusAreas     []string      `json:"focusAreas"`
	Cache          CacheConfig   `json:"cache"`
	Privacy        PrivacyConfig `json:"privacy"`
	Storage        StorageConfig `json:"storage"`
	Server         ServerConfig  `json:"server"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets"`
}

// StorageConfig controls report persistence.
type StorageConfig struct {
	Dir string `json:"dir"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Addr              string   `json:"addr"`
	APIKeys           []string `json:"apiKeys,omitempty"`
	RequestsPerMinute int      `json:"requestsPerMinute"`
	MaxFileBytes      int      `json:"maxFileBytes"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		Format:         "text",
		MaxChunkTokens: 3000,
		MaxRetries:     3,
		FocusAreas:     []string{"security", "performance", "maintainability"},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
		Storage: StorageConfig{
			Dir: "reports",
		},
		Server: ServerConfig{
			Addr:              ":8080",
			RequestsPerMinute: 10,
			MaxFileBytes:      10 << 20,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for critique.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "critique"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "critique"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "critique"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "critique"), nil
	default:
		return filepath.Join(home, ".config", "critique"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.MaxChunkTokens > 0 {
		dst.MaxChunkTokens = src.MaxChunkTokens
	}
	if src.MaxRetries > 0 {
		dst.MaxRetries = src.MaxRetries
	}
	if len(src.FocusAreas) > 0 {
		dst.FocusAreas = src.FocusAreas
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// Bool fields from file: JSON zero value for bool is false, so a simple
	// merge cannot distinguish unset from false. Trust the file value only
	// when it enables the feature.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	dst.Privacy.RedactSecrets = src.Privacy.RedactSecrets || dst.Privacy.RedactSecrets
	if src.Storage.Dir != "" {
		dst.Storage.Dir = src.Storage.Dir
	}
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if len(src.Server.APIKeys) > 0 {
		dst.Server.APIKeys = src.Server.APIKeys
	}
	if src.Server.RequestsPerMinute > 0 {
		dst.Server.RequestsPerMinute = src.Server.RequestsPerMinute
	}
	if src.Server.MaxFileBytes > 0 {
		dst.Server.MaxFileBytes = src.Server.MaxFileBytes
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("CRITIQUE_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("CRITIQUE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CRITIQUE_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("CRITIQUE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CRITIQUE_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("CRITIQUE_MAX_CHUNK_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxChunkTokens = n
		}
	}
	if v := os.Getenv("CRITIQUE_API_KEYS"); v != "" {
		keys := strings.Split(v, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		cfg.Server.APIKeys = keys
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["addr"]; ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := overrides["storageDir"]; ok && v != "" {
		cfg.Storage.Dir = v
	}
	if v, ok := overrides["maxChunkTokens"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxChunkTokens = n
		}
	}
	if v, ok := overrides["maxRetries"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v, ok := overrides["focusAreas"]; ok && v != "" {
		areas := strings.Split(v, ",")
		for i := range areas {
			areas[i] = strings.TrimSpace(areas[i])
		}
		cfg.FocusAreas = areas
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "addr":
		cfg.Server.Addr = value
	case "storageDir":
		cfg.Storage.Dir = value
	case "maxChunkTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxChunkTokens must be an integer: %w", err)
		}
		cfg.MaxChunkTokens = n
	case "maxRetries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxRetries must be an integer: %w", err)
		}
		cfg.MaxRetries = n
	case "requestsPerMinute":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("requestsPerMinute must be an integer: %w", err)
		}
		cfg.Server.RequestsPerMinute = n
	case "focusAreas":
		areas := strings.Split(value, ",")
		for i := range areas {
			areas[i] = strings.TrimSpace(areas[i])
		}
		cfg.FocusAreas = areas
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
