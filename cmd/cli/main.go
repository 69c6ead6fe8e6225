package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/gift-bundle/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
)

var flagDatabaseURL string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "giftctl",
	Short: "Administer the gift bundle store",
	Long: `giftctl runs maintenance tasks against the gift bundle database.

It reads the same environment (and .env file) as the server. Use --db to point
at another database, for example a Turso URL or a local file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDatabaseURL, "db", "", "database URL (overrides DATABASE_URL)")
}

// loadConfig loads the server configuration, then applies CLI flag overrides.
func loadConfig() *config.Config {
	cfg := config.Load()
	if flagDatabaseURL != "" {
		cfg.DatabaseURL = flagDatabaseURL
	}
	return cfg
}

func openRepo(cfg *config.Config) (*sqlite.SQLiteRepository, error) {
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return repo, nil
}
