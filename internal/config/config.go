// Package config loads process configuration from the environment. An
// optional .env file is read first; variables already set in the
// environment win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvAddr            = "HANDTRIS_ADDR"
	EnvDataDir         = "HANDTRIS_DATA_DIR"
	EnvPluginDir       = "HANDTRIS_PLUGIN_DIR"
	EnvWebDir          = "HANDTRIS_WEB_DIR"
	EnvCamera          = "HANDTRIS_CAMERA"
	EnvMotionThreshold = "HANDTRIS_MOTION_THRESHOLD"
	EnvTray            = "HANDTRIS_TRAY"
)

const (
	DefaultAddr            = ":8080"
	DefaultMotionThreshold = 1.0
	dataDirName            = ".handtris"
	databaseName           = "handtris.db"
)

// Config is the process configuration.
type Config struct {
	Addr      string
	DataDir   string
	PluginDir string
	// WebDir is empty when no static directory was found.
	WebDir          string
	Camera          int
	MotionThreshold float64
	Tray            bool
}

// DatabasePath is the SQLite file inside the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, databaseName)
}

// Load reads .env from the working directory, if present, and then the
// environment.
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	cfg := Config{
		Addr:            getenv(EnvAddr, DefaultAddr),
		DataDir:         os.Getenv(EnvDataDir),
		PluginDir:       os.Getenv(EnvPluginDir),
		WebDir:          os.Getenv(EnvWebDir),
		MotionThreshold: DefaultMotionThreshold,
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("find home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, dataDirName)
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}
	if cfg.WebDir == "" {
		cfg.WebDir = findWebDir(cfg.DataDir)
	}

	var err error
	if v := os.Getenv(EnvCamera); v != "" {
		if cfg.Camera, err = strconv.Atoi(v); err != nil || cfg.Camera < 0 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvCamera, v)
		}
	}
	if v := os.Getenv(EnvMotionThreshold); v != "" {
		if cfg.MotionThreshold, err = strconv.ParseFloat(v, 64); err != nil || cfg.MotionThreshold <= 0 || cfg.MotionThreshold > 100 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvMotionThreshold, v)
		}
	}
	if v := os.Getenv(EnvTray); v != "" {
		if cfg.Tray, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("invalid %s %q", EnvTray, v)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and <dataDir>/web, returning the
// first existing directory or "" if none is found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
