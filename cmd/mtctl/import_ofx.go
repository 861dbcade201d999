package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"moneytracker/internal/core"
	"moneytracker/internal/importer"
	"moneytracker/internal/services"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx",
		Short: "Import an OFX/QFX bank statement for a user",
		Long: `Import the transactions of an OFX or QFX statement exported from a bank.

Credits become income and debits become expenses. Imported transactions have
no category; assign one from the web interface.

Example:
  mtctl import-ofx --user alice --file ~/Downloads/checking_2024_03.qfx`,
		RunE: runImportOFX,
	}
	cmd.Flags().String("user", "", "username that owns the imported transactions")
	cmd.Flags().String("file", "", "path to the OFX/QFX file")
	cmd.Flags().Bool("dry-run", false, "parse and print without saving")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImportOFX(cmd *cobra.Command, _ []string) error {
	username, _ := cmd.Flags().GetString("user")
	path, _ := cmd.Flags().GetString("file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	if dryRun {
		txs, err := importer.ParseOFX(f)
		if err != nil {
			return err
		}
		for _, t := range txs {
			fmt.Fprintf(out, "%s  %-7s  %12s  %s", core.FormatDate(t.Date), t.Kind, t.Amount.Format(), t.Title)
			if err := t.Validate(); err != nil {
				fmt.Fprintf(out, "  [would be rejected: %v]", err)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%d transactions parsed (dry run)\n", len(txs))
		return nil
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	user, err := repo.GetUserByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("unknown user %q", username)
	}
	if err != nil {
		return err
	}

	// No broker here: imported rows are not mirrored to the spreadsheet.
	res, err := importer.ImportOFX(ctx, services.NewTransactionService(repo, nil), user.ID, f)
	if err != nil {
		return err
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "rejected: %v\n", r)
	}
	fmt.Fprintf(out, "%d of %d transactions imported for %s\n", res.Imported, res.Parsed, user.Username)
	return nil
}
