// Package cli implements the rowkit command-line interface: table and row
// operations for the entities declared in a schema file, run against the
// database named in config.yaml.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/rowkit/internal/logging"
	"github.com/mesh-intelligence/rowkit/internal/paths"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app carries the global flags and the state PersistentPreRunE loads.
type app struct {
	configDir string
	schema    string
	driver    string
	database  string
	dsn       string
	logLevel  string
	logFile   string
	jsonMode  bool

	v   *viper.Viper
	log *zap.Logger
}

// NewRootCmd creates the top-level "rowkit" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "rowkit",
		Short: "Table and row operations for declared entity types",
		Long: "rowkit creates, drops, and queries the tables of entity types declared\n" +
			"in a YAML schema file, against PostgreSQL or SQLite.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.schema, "schema", "", "schema declaration file")
	pf.StringVar(&a.driver, "driver", "", "database driver: postgres or sqlite")
	pf.StringVar(&a.database, "database", "", "database name, or file path for sqlite (default: ./rowkit.db)")
	pf.StringVar(&a.dsn, "dsn", "", "connection string; overrides host, port, and credentials")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.BoolVar(&a.jsonMode, "json", false, "output rows as JSON")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newEntitiesCmd(a),
		newCreateCmd(a),
		newDropCmd(a),
		newInsertCmd(a),
		newGetCmd(a),
		newAllCmd(a),
		newDeleteCmd(a),
		newSQLCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode separates mistakes in the invocation from failures of the
// database or the host.
func exitCode(err error) int {
	for _, target := range []error{
		types.ErrValidation,
		types.ErrNotNullField,
		types.ErrUnknownField,
		types.ErrInvalidSchema,
		types.ErrDuplicateEntity,
		types.ErrTableExists,
		types.ErrTableNotFound,
		types.ErrMethodUsage,
		types.ErrDriverEmpty,
		types.ErrDriverUnknown,
		types.ErrConfigInvalid,
		errUsage,
	} {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// setup resolves the config directory, loads config.yaml, and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = dir

	v, err := loadConfig(dir)
	if err != nil {
		return err
	}
	pf := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		cfgKeyDriver:   "driver",
		cfgKeyDSN:      "dsn",
		cfgKeySchema:   "schema",
		cfgKeyLogLevel: "log-level",
		cfgKeyLogFile:  "log-file",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	a.v = v

	var outputs []string
	if path := v.GetString(cfgKeyLogFile); path != "" {
		outputs = append(outputs, path)
	}
	log, err := logging.New(v.GetString(cfgKeyLogLevel), outputs...)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}
