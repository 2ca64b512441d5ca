// Package config handles the XDG configuration directory, its files and config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-logr/logr"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SessionFile holds the signed-in owner.
	SessionFile = "session.json"

	// ConfigFile is the optional settings file.
	ConfigFile = "config.toml"

	// DatabaseFile is the default SQLite database filename.
	DatabaseFile = "tasks.db"

	// DefaultCollection is the Firestore collection holding owner documents.
	DefaultCollection = "users"
)

// Backend names accepted in config.toml.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-"`

	// Log receives debug logs. The zero value discards.
	Log logr.Logger `toml:"-"`

	// Backend selects the document store: "sqlite" or "firestore".
	Backend string `toml:"backend"`

	Firestore FirestoreConfig `toml:"firestore"`
	SQLite    SQLiteConfig    `toml:"sqlite"`
}

// FirestoreConfig configures the Cloud Firestore backend.
type FirestoreConfig struct {
	ProjectID  string `toml:"project_id"`
	Collection string `toml:"collection"`
}

// SQLiteConfig configures the local backend.
type SQLiteConfig struct {
	// Path overrides <Dir>/tasks.db. A leading ~ is expanded.
	Path string `toml:"path"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:     dir,
		Backend: BackendSQLite,
		Firestore: FirestoreConfig{
			Collection: DefaultCollection,
		},
	}, nil
}

// Load reads config.toml from the config directory over the current values.
// A missing file leaves the defaults in place.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.ConfigPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if _, err := toml.Decode(string(data), c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	switch c.Backend {
	case BackendSQLite, BackendFirestore:
	case "":
		c.Backend = BackendSQLite
	default:
		return fmt.Errorf("unknown backend in %s: %q", ConfigFile, c.Backend)
	}
	if c.Firestore.Collection == "" {
		c.Firestore.Collection = DefaultCollection
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SessionPath returns the path to the session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// ConfigPath returns the path to config.toml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SQLitePath returns the database path for the sqlite backend.
func (c *Config) SQLitePath() string {
	if c.SQLite.Path != "" {
		return expandPath(c.SQLite.Path)
	}
	return filepath.Join(c.Dir, DatabaseFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
