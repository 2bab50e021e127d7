package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vbonduro/stayhaven/internal/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.migrate(cmd, db.Up)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.migrate(cmd, db.Down)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				database, err := db.Connect(a.cfg.DBPath)
				if err != nil {
					return err
				}
				defer func() { _ = database.Close() }()

				v, dirty, err := db.Version(database)
				if err != nil {
					return err
				}
				if dirty {
					fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty)\n", v)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
	)
	return cmd
}

func (a *app) migrate(cmd *cobra.Command, dir db.Direction) error {
	database, err := db.Connect(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database, dir); err != nil {
		return err
	}
	v, _, err := db.Version(database)
	if err != nil {
		return err
	}
	a.logger.Info("migration complete", "db", a.cfg.DBPath, "version", v)
	return nil
}
