package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the configuration from, in increasing priority:
// 1. Defaults
// 2. User config file (~/.tada/config.toml)
// 3. Project config file (.tada.toml in the current directory)
// 4. Environment variables (a .env file in the current directory is loaded first)
// 5. Flags defined by RegisterFlags (nil skips flag parsing)
func Load(flags *Flags, args []string) (*Config, error) {
	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	cfg := &Config{Home: home}
	setDefaults(cfg)

	if p := findUserConfigFile(home); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}
	if p := findProjectConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", p, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := parseFlags(cfg, flags, args); err != nil {
			return nil, fmt.Errorf("parsing flags: %w", err)
		}
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.ServerURL = DefaultServerURL
	cfg.Backend = DefaultBackend
	cfg.LogLevel = DefaultLogLevel
	cfg.Theme = DefaultTheme
	cfg.RequestTimeout = DefaultRequestTimeout
	cfg.Server.ListenAddr = DefaultListenAddr
	cfg.Server.TokenTTL = DefaultTokenTTL
	cfg.Server.MinPassword = DefaultMinPassword
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func finalizeConfig(cfg *Config) error {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case BackendRemote, BackendFile, BackendMem:
	default:
		return fmt.Errorf("unknown backend %q (want remote, file or mem)", cfg.Backend)
	}
	cfg.ServerURL = strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.Home, "data")
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = filepath.Join(cfg.Home, DefaultDBFile)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.TokenTTL <= 0 {
		cfg.Server.TokenTTL = DefaultTokenTTL
	}
	if cfg.Server.MinPassword <= 0 {
		cfg.Server.MinPassword = DefaultMinPassword
	}
	return nil
}
