package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "catalog-import",
	Short: "Synchronize a product catalog file into the catalog store",
	Long: `catalog-import reads a CSV or Excel catalog, groups its rows into products
and writes brands, products, variations, options, SKUs and option links into the
catalog store configured through the environment (see TABLE_KEY, STORE_BACKEND).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; the process environment always wins
		_ = godotenv.Load()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
