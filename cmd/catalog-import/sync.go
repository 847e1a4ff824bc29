package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"catalog-sync-service/internal/bootstrap"
	"catalog-sync-service/internal/catalog"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"catalog-sync-service/internal/source"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one catalog synchronization",
	Long: `Run one catalog synchronization and print the run report as JSON.

Examples:
  # Synchronize a CSV export
  catalog-import sync --file products.csv

  # Validate a legacy Excel-exported CSV without touching the store
  catalog-import sync --file products.csv --dry-run --encoding windows-1252
`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("file", "", "Path to the catalog file (.csv or .xlsx)")
	syncCmd.Flags().Bool("dry-run", false, "Run against an in-memory store and report what would be written")
	syncCmd.Flags().Bool("verify-skus", false, "Skip rewriting SKUs that already exist (default from VERIFY_SKU_EXISTS)")
	syncCmd.Flags().Bool("link-images", false, "Upload row images to object storage (default from LINK_IMAGE_UPLOAD)")
	syncCmd.Flags().String("encoding", "", "Source encoding: utf-8, windows-1252 or iso-8859-1 (default from SOURCE_ENCODING)")
	_ = syncCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	path, _ := cmd.Flags().GetString("file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if cmd.Flags().Changed("verify-skus") {
		cfg.VerifySkuExists, _ = cmd.Flags().GetBool("verify-skus")
	}
	if cmd.Flags().Changed("link-images") {
		cfg.LinkImageUpload, _ = cmd.Flags().GetBool("link-images")
	}
	if cmd.Flags().Changed("encoding") {
		cfg.SourceEncoding, _ = cmd.Flags().GetString("encoding")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.NewLogger(cfg)
	logger.SetOutput(os.Stderr)

	rows, err := readCatalog(path, cfg.SourceEncoding)
	if err != nil {
		return err
	}

	var (
		repo      repository.CatalogRepository
		uploader  catalog.ImageUploader
		publisher catalog.EventPublisher
	)
	if dryRun {
		repo = repository.NewMemoryCatalogRepository()
	} else {
		services, err := bootstrap.NewServices(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer services.Close()

		if err := services.Repo.VerifyTables(ctx); err != nil {
			return fmt.Errorf("catalog tables are not ready: %w", err)
		}
		repo, uploader, publisher = services.Repo, services.Uploader, services.Publisher
	}

	importer := catalog.NewImporter(repo, uploader, publisher, catalog.Options{
		VerifySkus:   cfg.VerifySkuExists,
		LinkImages:   cfg.LinkImageUpload && !dryRun,
		ValidateOnly: dryRun,
	}, logger)

	report, runErr := importer.Run(ctx, rows)
	if err := printReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	return runErr
}

func readCatalog(path, encoding string) ([]catalog.Row, error) {
	format, err := source.FormatFromFilename(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	rows, err := source.ReadRows(f, format, encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

func printReport(w io.Writer, report *models.SyncReport) error {
	if report == nil {
		return nil
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
