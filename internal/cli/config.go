package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rowkit/internal/paths"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "ROWKIT"

	cfgKeyDriver   = "driver"
	cfgKeyHost     = "host"
	cfgKeyPort     = "port"
	cfgKeyDatabase = "database"
	cfgKeyUser     = "user"
	cfgKeyPassword = "password"
	cfgKeyDSN      = "dsn"
	cfgKeySchema   = "schema"
	cfgKeyLogLevel = "log_level"
	cfgKeyLogFile  = "log_file"
)

// configFile is the layout init writes to config.yaml.
type configFile struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database,omitempty"`
	User     string `yaml:"user,omitempty"`
	DSN      string `yaml:"dsn,omitempty"`
	Schema   string `yaml:"schema,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
}

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# rowkit configuration
# Every key can be overridden by a ROWKIT_<KEY> environment variable.

# Database driver: sqlite or postgres
driver: sqlite

# sqlite: database file (default: ./rowkit.db)
# postgres: database name
# database:

# postgres only
# host: localhost
# port: 5432
# user:
# password:
# dsn:

# Schema declaration file
# schema: schema.yaml

# log_level: warn
# log_file: rowkit.log (default: stderr)
`

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. ROWKIT_* environment variables override file
// values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDriver, types.DriverSQLite)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// writeConfig replaces config.yaml with cfg.
func writeConfig(configDir string, cfg configFile) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(configDir, configFileExt), data, 0o644)
}

// connConfig assembles the connection settings. For sqlite the database
// path goes through the --database flag, config.yaml, ROWKIT_DATABASE, and
// the working-directory default in that order.
func (a *app) connConfig() (types.Config, error) {
	cfg := types.Config{
		Driver:   a.v.GetString(cfgKeyDriver),
		Host:     a.v.GetString(cfgKeyHost),
		Port:     a.v.GetInt(cfgKeyPort),
		Database: a.database,
		User:     a.v.GetString(cfgKeyUser),
		Password: a.v.GetString(cfgKeyPassword),
		DSN:      a.v.GetString(cfgKeyDSN),
	}
	if cfg.Database == "" {
		cfg.Database = a.v.GetString(cfgKeyDatabase)
	}
	if cfg.Driver == types.DriverSQLite && cfg.DSN == "" {
		p, err := paths.ResolveDatabase(a.database, a.v.GetString(cfgKeyDatabase))
		if err != nil {
			return types.Config{}, fmt.Errorf("resolve database: %w", err)
		}
		cfg.Database = p
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}
