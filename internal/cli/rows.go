package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowkit/pkg/rowkit"
)

func newInsertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <entity> [name=value ...]",
		Short: "Insert a row",
		Long: `Insert a row built from the declared defaults and the given values.
The value "null" stores NULL.

Example:
  rowkit insert UserAccount name=Ada age=30`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			values, err := parseValues(m.Schema(), args[1:])
			if err != nil {
				return err
			}
			r, err := m.Insert(cmd.Context(), values)
			if err != nil {
				return err
			}
			return a.printRow(cmd.OutOrStdout(), r)
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id | name=value ...>",
		Short: "Get the first row matching the conditions",
		Long: `Get prints the first row whose fields equal every given value. A single
bare argument is an id.

Example:
  rowkit get UserAccount 1
  rowkit get UserAccount name=Ada`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			conds, err := parseConds(m.Schema(), args[1:])
			if err != nil {
				return err
			}
			r, found, err := m.Get(cmd.Context(), conds...)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: no %s row matches", errUsage, m.Schema().Name())
			}
			return a.printRow(cmd.OutOrStdout(), r)
		},
	}
}

func newAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all <entity> [name=value ...]",
		Short: "List rows, optionally filtered",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			var conds []rowkit.Cond
			if len(args) > 1 {
				if conds, err = parseConds(m.Schema(), args[1:]); err != nil {
					return err
				}
			}
			rows, err := rowkit.Collect(m.All(cmd.Context(), conds...))
			if err != nil {
				return err
			}
			return a.printRows(cmd.OutOrStdout(), rows)
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id | name=value ...>",
		Short: "Delete rows matching the conditions",
		Long: `Delete removes every row whose fields equal all given values. A single
bare argument is an id.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			conds, err := parseConds(m.Schema(), args[1:])
			if err != nil {
				return err
			}
			if err := m.DeleteWhere(cmd.Context(), conds...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted from %s\n", m.Schema().Table())
			return nil
		},
	}
}
