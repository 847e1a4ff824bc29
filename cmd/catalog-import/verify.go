package main

import (
	"context"
	"fmt"
	"time"

	"catalog-sync-service/internal/bootstrap"
	"catalog-sync-service/internal/config"
	"github.com/spf13/cobra"
)

var verifyTablesCmd = &cobra.Command{
	Use:   "verify-tables",
	Short: "Check that every catalog table exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		// no uploads happen here
		cfg.LinkImageUpload = false

		logger := bootstrap.NewLogger(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		services, err := bootstrap.NewServices(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer services.Close()

		if err := services.Repo.VerifyTables(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "All catalog tables for %q are present\n", cfg.TableKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyTablesCmd)
}
