package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "create <entity>",
		Short: "Create an entity's table",
		Long: `Create the table for a declared entity. An existing table is an error
unless --force is given, which drops and recreates it.

Example:
  rowkit create UserAccount
  rowkit create user_account --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Create(cmd.Context(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created table %s\n", m.Schema().Table())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "drop and recreate an existing table")
	return cmd
}

func newDropCmd(a *app) *cobra.Command {
	var silent bool
	cmd := &cobra.Command{
		Use:   "drop <entity>",
		Short: "Drop an entity's table",
		Long: `Drop the table for a declared entity. A missing table is an error
unless --silent is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Drop(cmd.Context(), silent); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped table %s\n", m.Schema().Table())
			return nil
		},
	}
	cmd.Flags().BoolVar(&silent, "silent", false, "succeed when the table does not exist")
	return cmd
}

func newEntitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entities declared in the schema file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range reg.Names() {
				s, _ := reg.Lookup(name)
				fmt.Fprintf(w, "%s\ttable=%s\tfingerprint=%s\n", s.Name(), s.Table(), s.Fingerprint())
				for _, f := range s.Fields() {
					fmt.Fprintf(w, "  %s\t%s\n", f.Name(), f.SQLType())
				}
			}
			return nil
		},
	}
}
