// Command mtctl is the administration tool for moneytracker: schema
// migrations, category seeding, user accounts and statement import.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"moneytracker/internal/cli"
	"moneytracker/internal/config"
	"moneytracker/internal/log"
	"moneytracker/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:               "mtctl",
	Short:             "Administer a moneytracker database",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func init() {
	// Defaults come from the same environment the server reads.
	defaults := config.Load()

	rootCmd.PersistentFlags().String("db", defaults.SQLiteDBPath, "path to the SQLite database")
	rootCmd.PersistentFlags().String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", log.FormatConsole, "log format (console, text, json)")

	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(importOFXCmd())
	rootCmd.AddCommand(sheetsAuthCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig wires MONEYTRACKER_* environment variables over the flag
// defaults, e.g. MONEYTRACKER_DATABASE_PATH.
func initConfig(_ *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	viper.SetEnvPrefix("MONEYTRACKER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	level, err := config.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	log.SetDefault(log.New(log.Config{
		Level:     level,
		Format:    viper.GetString("logging.format"),
		Component: "mtctl",
		Output:    os.Stderr,
	}))
	return nil
}

func dbPath() string {
	return viper.GetString("database.path")
}

// openRepository opens the database, applying pending migrations.
func openRepository() (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath())
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath(), err)
	}
	return repo, nil
}
