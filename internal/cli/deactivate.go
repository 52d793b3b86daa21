package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"accelerator/internal/app"
)

// newDeactivateCmd runs one registration check, for use from an external cron.
func newDeactivateCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Close programs whose registration period has ended",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.DateOnly, at)
				if err != nil {
					return fmt.Errorf("--at must be YYYY-MM-DD: %w", err)
				}
				now = parsed
			}
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.PostgresDSN == "" {
				return errors.New("DATABASE_URL is required for deactivate")
			}
			repos, err := openRepositories(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer repos.close()
			programs := app.NewProgramService(repos.programs, repos.joinPrograms, repos.directions, logger)
			n, err := programs.DeactivateExpired(cmd.Context(), now)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deactivated %d program(s)\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Evaluate as of this date (YYYY-MM-DD, default today)")
	return cmd
}
