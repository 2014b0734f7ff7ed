package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage password accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a password account; the password is read from INVOICEFLOW_PASSWORD",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("INVOICEFLOW_PASSWORD")
			if strings.TrimSpace(password) == "" {
				return errors.New("INVOICEFLOW_PASSWORD is not set")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.auth.CreateUser(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			if !a.policy.IsAdmin(strings.TrimSpace(email)) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s is not in ADMIN_EMAILS and will be refused by the auth gate\n", email)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
