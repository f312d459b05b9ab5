package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultAppListURL is the Steam Web API endpoint listing every app.
	DefaultAppListURL = "https://api.steampowered.com/ISteamApps/GetAppList/v2/"

	// DefaultMaxAgeDays is how long a downloaded app list is trusted.
	DefaultMaxAgeDays = 7
)

// Config is the settings file for ssb.
type Config struct {
	SteamFolder           string `toml:"steam_folder"`
	TargetFolder          string `toml:"target_folder"`
	ForceDisableUpdate    bool   `toml:"force_disable_update"`
	DisableArtificalDelay bool   `toml:"disable_artifical_delay"`
	StrictScan            bool   `toml:"strict_scan"`
	LogDir                string `toml:"log_dir"`

	AppIDs     AppIDsConfig     `toml:"appids"`
	Target     TargetConfig     `toml:"target"`
	Database   DatabaseConfig   `toml:"database"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// AppIDsConfig controls where the app list comes from and how long the
// cached copy stays valid.
type AppIDsConfig struct {
	URL                 string `toml:"url"`
	CachePath           string `toml:"cache_path"`
	MaxAgeDays          int    `toml:"max_age_days"`
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds"` // 0 waits as long as the transport allows
}

// TargetConfig selects where screenshots are copied to.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type TargetConfig struct {
	Type string `toml:"type"` // "filesystem" (default), "s3" or "memory"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// DatabaseConfig represents configuration for the run history database.
type DatabaseConfig struct {
	Type        string `toml:"type"`               // "sqlite" or "memory"
	DataDir     string `toml:"data_dir,omitempty"` // only used for type=sqlite
	AutoMigrate *bool  `toml:"auto_migrate,omitempty"`
}

// ShouldAutoMigrate reports whether pending schema migrations are applied on
// open. Defaults to true.
func (c DatabaseConfig) ShouldAutoMigrate() bool {
	return c.AutoMigrate == nil || *c.AutoMigrate
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// NewConfig creates a Config with every default filled in. baseDir holds
// the app list cache, logs and history database.
func NewConfig(baseDir, steamFolder, targetFolder string) *Config {
	cfg := &Config{
		SteamFolder:  steamFolder,
		TargetFolder: targetFolder,
	}
	ApplyDefaults(cfg, baseDir)
	return cfg
}

// ApplyDefaults fills zero-valued settings from defaults rooted at baseDir.
// Settings files written by older versions only carry the top-level keys.
func ApplyDefaults(cfg *Config, baseDir string) {
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(baseDir, "log")
	}
	if cfg.AppIDs.URL == "" {
		cfg.AppIDs.URL = DefaultAppListURL
	}
	if cfg.AppIDs.CachePath == "" {
		cfg.AppIDs.CachePath = filepath.Join(baseDir, "appids.json")
	}
	if cfg.AppIDs.MaxAgeDays == 0 {
		cfg.AppIDs.MaxAgeDays = DefaultMaxAgeDays
	}
	if cfg.Target.Type == "" {
		cfg.Target.Type = "filesystem"
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.DataDir == "" {
		cfg.Database.DataDir = filepath.Join(baseDir, "db")
	}
}

// Validate checks the settings a backup run depends on.
func (c *Config) Validate() error {
	if c.SteamFolder == "" {
		return fmt.Errorf("steam_folder is not set")
	}
	if c.Target.Type == "filesystem" && c.TargetFolder == "" {
		return fmt.Errorf("target_folder is not set")
	}
	if c.Target.Type == "s3" && c.Target.S3Bucket == "" {
		return fmt.Errorf("target.s3_bucket is not set")
	}
	if c.AppIDs.MaxAgeDays < 0 {
		return fmt.Errorf("appids.max_age_days must not be negative, got %d", c.AppIDs.MaxAgeDays)
	}
	if c.AppIDs.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("appids.fetch_timeout_seconds must not be negative, got %d", c.AppIDs.FetchTimeoutSeconds)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, replacing any existing file.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := writeAndClose(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// writeAndClose encodes cfg to w and closes it. A failed close is reported
// since buffered data may not have reached the disk.
func writeAndClose(w io.WriteCloser, cfg *Config) error {
	m := &Manager{}
	if err := m.Write(w, cfg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	return nil
}

// Init writes a new config file at path. It refuses to overwrite an
// existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := Save(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
