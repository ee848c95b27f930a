package command

import (
	"dtalks/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.OpenGorm(cmd.Context(), cfg.DatabaseURL, database.DefaultOptions(), logger)
			if err != nil {
				return err
			}
			defer database.Close(db)

			return database.Migrate(cmd.Context(), db, logger)
		},
	}
}
