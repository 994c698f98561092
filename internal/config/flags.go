package config

import (
	"flag"
	"time"
)

// Flags holds the command-line overrides defined by RegisterFlags.
// Flags left at their zero value do not override lower-priority sources.
type Flags struct {
	set *flag.FlagSet

	serverURL   *string
	backend     *string
	dataDir     *string
	logLevel    *string
	theme       *string
	timeout     *time.Duration
	listenAddr  *string
	dbPath      *string
	corsOrigins *string
}

// RegisterFlags defines the client flags on fs. Pass server=true to also define server flags.
func RegisterFlags(fs *flag.FlagSet, server bool) *Flags {
	f := &Flags{
		set:       fs,
		serverURL: fs.String("server", "", "tada-server base URL"),
		backend:   fs.String("backend", "", "sync backend: remote, file or mem"),
		dataDir:   fs.String("data-dir", "", "directory for the file backend"),
		logLevel:  fs.String("log-level", "", "debug, info, warn or error"),
		theme:     fs.String("theme", "", "plain output theme: classic, neon or mono"),
		timeout:   fs.Duration("timeout", 0, "per-request timeout"),
	}
	if server {
		f.listenAddr = fs.String("listen", "", "listen address")
		f.dbPath = fs.String("db", "", "bbolt database path")
		f.corsOrigins = fs.String("cors", "", "comma-separated allowed CORS origins")
	}
	return f
}

// Args returns the non-flag arguments after Load.
func (f *Flags) Args() []string { return f.set.Args() }

func parseFlags(cfg *Config, f *Flags, args []string) error {
	if err := f.set.Parse(args); err != nil {
		return err
	}
	setString(&cfg.ServerURL, f.serverURL)
	setString(&cfg.Backend, f.backend)
	setString(&cfg.DataDir, f.dataDir)
	setString(&cfg.LogLevel, f.logLevel)
	setString(&cfg.Theme, f.theme)
	if f.timeout != nil && *f.timeout > 0 {
		cfg.RequestTimeout = *f.timeout
	}
	setString(&cfg.Server.ListenAddr, f.listenAddr)
	setString(&cfg.Server.DBPath, f.dbPath)
	if f.corsOrigins != nil && *f.corsOrigins != "" {
		cfg.Server.CORSOrigins = splitList(*f.corsOrigins)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}
