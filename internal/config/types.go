package config

import "time"

// Backends the client can sync against.
const (
	BackendRemote = "remote"
	BackendFile   = "file"
	BackendMem    = "mem"
)

const (
	DefaultServerURL      = "http://127.0.0.1:8787"
	DefaultBackend        = BackendRemote
	DefaultLogLevel       = "info"
	DefaultTheme          = "classic"
	DefaultRequestTimeout = 10 * time.Second

	DefaultListenAddr  = "127.0.0.1:8787"
	DefaultDBFile      = "tada.db"
	DefaultTokenTTL    = 24 * time.Hour
	DefaultMinPassword = 6

	userConfigFile    = "config.toml"
	projectConfigFile = ".tada.toml"
)

// Config is the merged client and server configuration.
type Config struct {
	ServerURL      string        `toml:"server_url"`
	Backend        string        `toml:"backend"`
	DataDir        string        `toml:"data_dir"`
	LogLevel       string        `toml:"log_level"`
	Theme          string        `toml:"theme"`
	RequestTimeout time.Duration `toml:"request_timeout"`

	// Token is only ever taken from TADA_TOKEN, never written to a file.
	Token string `toml:"-"`

	Server ServerConfig `toml:"server"`

	// Home is the per-user state directory (~/.tada unless TADA_HOME is set).
	Home string `toml:"-"`
}

// ServerConfig configures tada-server.
type ServerConfig struct {
	ListenAddr  string        `toml:"listen_addr"`
	DBPath      string        `toml:"db_path"`
	JWTSecret   string        `toml:"jwt_secret"`
	TokenTTL    time.Duration `toml:"token_ttl"`
	CORSOrigins []string      `toml:"cors_origins"`
	MinPassword int           `toml:"min_password"`
}
