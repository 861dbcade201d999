package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"moneytracker/internal/cli"
	"moneytracker/internal/log"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default income and expense categories",
		Long: `Install the default category catalog. Existing categories are left
untouched, so running seed again is safe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			created, err := cli.Seed(cmd.Context(), log.FromContext(cmd.Context()).WithComponent(log.ComponentCategory), repo)
			if err != nil {
				return err
			}
			slog.Debug("Seed finished", "created", created)
			fmt.Fprintf(cmd.OutOrStdout(), "%d categories created\n", created)
			return nil
		},
	}
}
