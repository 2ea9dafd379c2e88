// Package cli holds the recon command tree.
package cli

import (
	"fmt"
	"os"

	"recon-backend/internal/config"
	"recon-backend/internal/database"
	"recon-backend/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "1.0.0"

// cfg is set once by Execute before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "recon",
	Short: "Receivable/payable reconciliation for the ledger database",
	Long: `recon reads partners, sales, purchases and payments from the ledger
database and writes a workbook with one sheet per customer and supplier.

Configuration comes from the environment (or a .env file):
  DATABASE_DRIVER  sqlite | postgres
  DATABASE_DSN     file path or connection string
  EXPORT_DIR       where workbooks are written
  EXPORT_FONT      font used for every written cell`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(c *config.Config) {
	cfg = c
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// openDB connects to the configured store; the caller closes it.
func openDB() (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
