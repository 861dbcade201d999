package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moneytracker/internal/auth"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account without going through the sign-up page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")

			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			u, err := auth.NewPasswordAuthenticator(repo).Register(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	create.Flags().String("username", "", "login name")
	create.Flags().String("password", "", "password (at least 8 characters)")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
