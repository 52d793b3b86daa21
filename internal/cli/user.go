package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"accelerator/internal/app"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserSetRoleCmd())
	return cmd
}

// newUserSetRoleCmd bootstraps the first admin, who can then assign roles over HTTP.
func newUserSetRoleCmd() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Assign a role to the user with the given email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || role == "" {
				return errors.New("--email and --role are required")
			}
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.PostgresDSN == "" {
				return errors.New("DATABASE_URL is required for user set-role")
			}
			repos, err := openRepositories(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer repos.close()
			updated, err := app.NewUserService(repos.users, logger).SetRoleByEmail(cmd.Context(), email, role)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Email, updated.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&role, "role", "", "standard, staff-acceleration, staff-direction or admin")
	return cmd
}
