package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dresscutur/backend/internal/config"
	"dresscutur/backend/internal/service/auth"
	"dresscutur/backend/internal/store/postgres"
)

const adminPasswordEnv = "DRESSCUTUR_ADMIN_PASSWORD"

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office accounts",
	}
	cmd.AddCommand(newAdminCreateCmd())
	return cmd
}

func newAdminCreateCmd() *cobra.Command {
	var email, password string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a back-office account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(adminPasswordEnv)
			}
			if password == "" {
				return errors.New("password is required: pass --password or set " + adminPasswordEnv)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)
			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer closeDatabase(db, log)

			if err := postgres.MigrateUp(cmd.Context(), db, log); err != nil {
				return err
			}

			svc := auth.NewService(postgres.NewAdminRepo(db), cfg.BcryptCost)
			admin, err := svc.CreateAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %q (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "login email")
	c.Flags().StringVar(&password, "password", "", "login password (defaults to $"+adminPasswordEnv+")")
	_ = c.MarkFlagRequired("email")
	return c
}
