package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	autoMigrate := false
	original := &Config{
		SteamFolder:           "/home/user/.steam/steam/userdata",
		TargetFolder:          "/home/user/Pictures/Steam",
		ForceDisableUpdate:    true,
		DisableArtificalDelay: true,
		StrictScan:            true,
		LogDir:                "/opt/ssb/log",
		AppIDs: AppIDsConfig{
			URL:                 "http://localhost:8080/apps",
			CachePath:           "/opt/ssb/appids.json",
			MaxAgeDays:          3,
			FetchTimeoutSeconds: 30,
		},
		Target: TargetConfig{
			Type:     "s3",
			S3Bucket: "shots",
			S3Prefix: "steam",
			S3Region: "eu-west-1",
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/opt/ssb/db", AutoMigrate: &autoMigrate},
		Filesystem: FilesystemConfig{
			Ignore: []string{"thumbnails", "*_vr.jpg"},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.SteamFolder != original.SteamFolder {
		t.Errorf("SteamFolder = %q, want %q", got.SteamFolder, original.SteamFolder)
	}
	if got.TargetFolder != original.TargetFolder {
		t.Errorf("TargetFolder = %q, want %q", got.TargetFolder, original.TargetFolder)
	}
	if !got.ForceDisableUpdate || !got.DisableArtificalDelay || !got.StrictScan {
		t.Errorf("bool settings lost: %+v", got)
	}
	if got.AppIDs != original.AppIDs {
		t.Errorf("AppIDs = %+v, want %+v", got.AppIDs, original.AppIDs)
	}
	if got.Target != original.Target {
		t.Errorf("Target = %+v, want %+v", got.Target, original.Target)
	}
	if got.Database.ShouldAutoMigrate() {
		t.Error("Database.ShouldAutoMigrate() = true, want false")
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Fatalf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestManager_Read_LegacySettings(t *testing.T) {
	legacy := `steam_folder = "C:/Program Files (x86)/Steam/userdata"
target_folder = "D:/Pictures/Steam"
force_disable_update = false
disable_artifical_delay = true
`
	m := &Manager{}
	cfg, err := m.Read(strings.NewReader(legacy))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !cfg.DisableArtificalDelay {
		t.Error("DisableArtificalDelay = false, want true")
	}

	ApplyDefaults(cfg, "/opt/ssb")
	if cfg.AppIDs.CachePath != filepath.Join("/opt/ssb", "appids.json") {
		t.Errorf("AppIDs.CachePath = %q", cfg.AppIDs.CachePath)
	}
	if cfg.AppIDs.MaxAgeDays != DefaultMaxAgeDays {
		t.Errorf("AppIDs.MaxAgeDays = %d, want %d", cfg.AppIDs.MaxAgeDays, DefaultMaxAgeDays)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/ssb", "/steam/userdata", "/pictures")

	if cfg.SteamFolder != "/steam/userdata" {
		t.Errorf("SteamFolder = %q, want %q", cfg.SteamFolder, "/steam/userdata")
	}
	if cfg.LogDir != filepath.Join("/data/ssb", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.AppIDs.URL != DefaultAppListURL {
		t.Errorf("AppIDs.URL = %q, want %q", cfg.AppIDs.URL, DefaultAppListURL)
	}
	if cfg.Target.Type != "filesystem" {
		t.Errorf("Target.Type = %q, want filesystem", cfg.Target.Type)
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.DataDir != filepath.Join("/data/ssb", "db") {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if !cfg.Database.ShouldAutoMigrate() {
		t.Error("ShouldAutoMigrate() = false, want true by default")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		LogDir:   "/var/log/ssb",
		AppIDs:   AppIDsConfig{MaxAgeDays: 1, URL: "http://mirror/apps"},
		Database: DatabaseConfig{Type: "memory"},
	}
	ApplyDefaults(cfg, "/base")

	if cfg.LogDir != "/var/log/ssb" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.AppIDs.MaxAgeDays != 1 || cfg.AppIDs.URL != "http://mirror/apps" {
		t.Errorf("AppIDs = %+v", cfg.AppIDs)
	}
	if cfg.Database.DataDir != "" {
		t.Errorf("memory database got data_dir %q", cfg.Database.DataDir)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing steam folder", mutate: func(c *Config) { c.SteamFolder = "" }, wantErr: true},
		{name: "missing target folder", mutate: func(c *Config) { c.TargetFolder = "" }, wantErr: true},
		{
			name: "s3 target without folder",
			mutate: func(c *Config) {
				c.TargetFolder = ""
				c.Target = TargetConfig{Type: "s3", S3Bucket: "b"}
			},
		},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Target.Type = "s3" }, wantErr: true},
		{name: "negative max age", mutate: func(c *Config) { c.AppIDs.MaxAgeDays = -1 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.AppIDs.FetchTimeoutSeconds = -5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/base", "/steam", "/target")
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "settings.toml")
		cfg := NewConfig(dir, "/steam", "/target")

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "settings.toml")
		cfg := NewConfig(dir, "/steam", "/target")

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestSave_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.toml")

	if err := Save(path, NewConfig(dir, "/first", "/target")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := Save(path, NewConfig(dir, "/second", "/target")); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if got.SteamFolder != "/second" {
		t.Errorf("SteamFolder = %q, want /second", got.SteamFolder)
	}
}

// closeFailWriter accepts writes and fails on Close, like a file whose
// buffered data cannot be flushed.
type closeFailWriter struct {
	bytes.Buffer
	closed bool
}

var errClose = errors.New("no space left on device")

func (w *closeFailWriter) Close() error {
	w.closed = true
	return errClose
}

func TestWriteAndClose_ReportsCloseError(t *testing.T) {
	w := &closeFailWriter{}
	err := writeAndClose(w, NewConfig("/opt/ssb", "/steam/userdata", "/backup"))
	if !errors.Is(err, errClose) {
		t.Errorf("writeAndClose() error = %v, want close error", err)
	}
	if !w.closed {
		t.Error("writer not closed")
	}
	if !strings.Contains(w.String(), "steam_folder") {
		t.Errorf("config not written before close:\n%s", w.String())
	}
}

func TestReadFromFile(t *testing.T) {
	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/settings.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})

	t.Run("returns error for malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.toml")
		if err := os.WriteFile(path, []byte("steam_folder = [unterminated"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFromFile(path); err == nil {
			t.Fatal("ReadFromFile() expected error for malformed file")
		}
	})
}
