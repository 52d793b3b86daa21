package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed the direction catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.PostgresDSN == "" {
				return errors.New("DATABASE_URL is required for migrate")
			}
			repos, err := openRepositories(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer repos.close()
			if err := seedDirections(cmd.Context(), cfg, repos, logger); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
