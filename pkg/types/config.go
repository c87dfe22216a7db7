package types

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// Config holds the connection parameters for a database session.
// DSN, when set, is used verbatim and the discrete fields are ignored.
type Config struct {
	Driver   string `json:"driver" yaml:"driver" mapstructure:"driver"`
	Host     string `json:"host" yaml:"host" mapstructure:"host"`
	Port     int    `json:"port" yaml:"port" mapstructure:"port"`
	Database string `json:"database" yaml:"database" mapstructure:"database"`
	User     string `json:"user" yaml:"user" mapstructure:"user"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
	DSN      string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultPostgresPort is used when Config.Port is zero.
const DefaultPostgresPort = 5432

// Config validation errors.
var (
	ErrDriverEmpty   = errors.New("driver must not be empty")
	ErrDriverUnknown = errors.New("unknown driver")
	ErrConfigInvalid = errors.New("invalid connection config")
)

// knownDrivers lists the drivers that Validate accepts.
var knownDrivers = map[string]bool{
	DriverPostgres: true,
	DriverSQLite:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return fmt.Errorf("%w: %q", ErrDriverUnknown, c.Driver)
	}
	if c.DSN != "" {
		return nil
	}
	if c.Database == "" {
		return fmt.Errorf("%w: database must not be empty", ErrConfigInvalid)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrConfigInvalid, c.Port)
	}
	if c.Driver == DriverPostgres && c.Host == "" {
		return fmt.Errorf("%w: host must not be empty", ErrConfigInvalid)
	}
	return nil
}

// DataSourceName returns the driver-specific connection string.
// Postgres gets a URL understood by pgx; sqlite gets the database path.
func (c Config) DataSourceName() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == DriverSQLite {
		return c.Database
	}
	port := c.Port
	if port == 0 {
		port = DefaultPostgresPort
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	return u.String()
}

// Redacted returns the connection string with the password masked, for logs.
func (c Config) Redacted() string {
	if c.Driver == DriverSQLite {
		return c.DataSourceName()
	}
	u, err := url.Parse(c.DataSourceName())
	if err != nil {
		return "<unparseable dsn>"
	}
	return u.Redacted()
}
