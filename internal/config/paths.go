package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HomeDir resolves the tada state directory.
func HomeDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TADA_HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

// CredentialsPath is where the session token is persisted.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Home, "credentials.json")
}

// LogPath is the file the TUI logs into.
func (c *Config) LogPath() string {
	return filepath.Join(c.Home, "tada.log")
}

func findUserConfigFile(home string) string {
	p := filepath.Join(home, userConfigFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func findProjectConfigFile() string {
	if _, err := os.Stat(projectConfigFile); err == nil {
		return projectConfigFile
	}
	return ""
}
