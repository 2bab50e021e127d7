package main

import (
	"github.com/spf13/cobra"
	"github.com/vbonduro/stayhaven/internal/db"
	"github.com/vbonduro/stayhaven/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, spots, reviews and bookings into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			_, err = seed.New(database, a.logger).Run(cmd.Context())
			return err
		},
	}
}
