package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowkit/pkg/rowkit"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml and check the database connection",
		Long: `Init records the current driver, database, and schema settings in
config.yaml, then opens and closes a session to confirm the database is
reachable. For sqlite this creates the database file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.connConfig()
			if err != nil {
				return err
			}

			file := configFile{
				Driver:   cfg.Driver,
				Database: cfg.Database,
				Schema:   a.v.GetString(cfgKeySchema),
				LogLevel: a.v.GetString(cfgKeyLogLevel),
				LogFile:  a.v.GetString(cfgKeyLogFile),
			}
			if cfg.Driver == types.DriverPostgres {
				file.Host, file.Port, file.User, file.DSN = cfg.Host, cfg.Port, cfg.User, cfg.DSN
			}
			if err := writeConfig(a.configDir, file); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			sess, err := rowkit.Connect(cmd.Context(), cfg, a.log)
			if err != nil {
				return err
			}
			if err := sess.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rowkit initialized (%s: %s)\n", cfg.Driver, cfg.Redacted())
			return nil
		},
	}
}
