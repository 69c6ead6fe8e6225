package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/gift-bundle/pkg/auth"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(loadConfig())
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Schema is up to date")
		return nil
	},
}

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every bundle with its gifts and images as JSON",
	Long: `Dump every bundle with its gifts and images as JSON.

Examples:
  giftctl export > bundles.json
  giftctl export -o bundles.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(loadConfig())
		if err != nil {
			return err
		}
		defer repo.Close()

		bundles, err := repo.Dump(cmd.Context())
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var out io.Writer = cmd.OutOrStdout()
		if exportOutput != "" {
			file, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()
			out = file
		}

		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(bundles); err != nil {
			return fmt.Errorf("encode failed: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d bundles\n", len(bundles))
		return nil
	},
}

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load bundles from an export file, skipping IDs that already exist and rejecting invalid ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()

		var bundles []domain.Bundle
		if err := json.NewDecoder(file).Decode(&bundles); err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}

		repo, err := openRepo(loadConfig())
		if err != nil {
			return err
		}
		defer repo.Close()

		ctx := cmd.Context()
		count, rejected := 0, 0
		for i := range bundles {
			b := &bundles[i]
			if err := b.CheckIntegrity(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Rejecting %s: %v\n", b.ID, err)
				rejected++
				continue
			}
			existing, err := repo.GetBundle(ctx, b.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipping existing bundle: %s\n", b.ID)
				continue
			}
			if err := repo.CreateBundle(ctx, b); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to import %s: %v\n", b.ID, err)
				continue
			}
			count++
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d bundles\n", count)
		if rejected > 0 {
			return fmt.Errorf("%d bundles failed validation", rejected)
		}
		return nil
	},
}

var tokenUser string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign an access token for a user, for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		token, expiresAt, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL).Issue(tokenUser)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "Expires at %s\n", expiresAt.UTC().Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, exportCmd, importCmd, tokenCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "JSON file produced by export")
	_ = importCmd.MarkFlagRequired("file")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user ID to put in the token subject")
	_ = tokenCmd.MarkFlagRequired("user")
}
