package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	Connections []Connection `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
}

// Connection represents a saved database connection profile. PostgreSQL
// profiles use the network fields; SQLite profiles use Path.
type Connection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode,omitempty"`
	Path     string `mapstructure:"path" yaml:"path,omitempty"`
}

// Preferences holds user preferences.
type Preferences struct {
	DefaultConnection string `mapstructure:"default_connection" yaml:"default_connection"`
	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`
	// MaxRows caps the rows shown by the console. Zero means no cap.
	MaxRows int `mapstructure:"max_rows" yaml:"max_rows"`
}

// DSN builds the driver connection string for the profile.
func (c Connection) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}

	u := url.URL{
		Scheme: "postgresql",
		Host:   c.Host,
		Path:   "/" + c.Database,
	}
	if c.Port > 0 {
		u.Host += ":" + strconv.Itoa(c.Port)
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

// DisplayString returns a human-readable summary of the connection. It never
// includes the password.
func (c Connection) DisplayString() string {
	if c.Driver == DriverSQLite {
		return "sqlite:" + c.Path
	}

	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

// ParseDSN parses a connection string into a Connection. It accepts
// postgres:// and postgresql:// URLs, sqlite:<path>, file: URIs and bare
// paths ending in .db, .sqlite or .sqlite3.
func ParseDSN(dsn string) (Connection, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		return sqliteConnection(strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite:"), "//"))
	case strings.HasPrefix(dsn, "file:"):
		return sqliteConnection(dsn)
	case isSQLitePath(dsn):
		return sqliteConnection(dsn)
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Connection{}, fmt.Errorf("invalid DSN: unsupported scheme %q", u.Scheme)
	}

	conn := Connection{
		Driver:   DriverPostgres,
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = 5432
	}

	conn.Name = fmt.Sprintf("postgres-%s-%d-%s", conn.Host, conn.Port, conn.Database)

	return conn, nil
}

func sqliteConnection(path string) (Connection, error) {
	if path == "" || path == "file:" {
		return Connection{}, fmt.Errorf("invalid DSN: empty sqlite path")
	}
	base := strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return Connection{
		Name:   "sqlite-" + strings.TrimSuffix(filepath.Base(base), filepath.Ext(base)),
		Driver: DriverSQLite,
		Path:   path,
	}, nil
}

func isSQLitePath(dsn string) bool {
	if strings.Contains(dsn, "://") {
		return false
	}
	switch filepath.Ext(dsn) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// HasConnection checks if a connection with the given name already exists.
func (cfg *Config) HasConnection(name string) bool {
	return cfg.Connection(name) != nil
}

// Connection returns the profile with the given name, or nil.
func (cfg *Config) Connection(name string) *Connection {
	for i := range cfg.Connections {
		if cfg.Connections[i].Name == name {
			return &cfg.Connections[i]
		}
	}
	return nil
}

// AddConnection appends a connection if it doesn't already exist.
func (cfg *Config) AddConnection(conn Connection) {
	if !cfg.HasConnection(conn.Name) {
		cfg.Connections = append(cfg.Connections, conn)
	}
}
