package cmd

import (
	"github.com/spf13/cobra"

	"library/log"
	"library/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := repository.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = repository.Close(db) }()

		return repository.Migrate(ctx, db)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace every row with the sample users, books and loans",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := repository.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() { _ = repository.Close(db) }()

		if err := repository.Migrate(ctx, db); err != nil {
			return err
		}
		if err := repository.Seed(ctx, db); err != nil {
			return err
		}
		log.GetLogger(ctx).Info("sample data inserted")
		return nil
	},
}
