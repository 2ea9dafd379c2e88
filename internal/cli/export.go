package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"recon-backend/internal/database"
	"recon-backend/internal/ledger"
	"recon-backend/internal/logger"
	"recon-backend/internal/reconcile"
	"recon-backend/internal/workbook"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the receivable/payable workbook",
	Long: `Export one sheet per customer and supplier with identity, full-history
summary, filtered sales/purchases and filtered payments.

Summaries always cover the whole history; the date and product flags only
narrow the detail rows. A malformed date is ignored with a warning.`,
	Example: `  # Everything
  recon export

  # Sales/purchases in 2024, payments from March on, as JSON
  recon export --outbound-from 2024-01-01 --outbound-to 2024-12-31 --payment-from 2024-03-01 --json

  # Explicit output file
  recon export --output q1.xlsx`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("outbound-from", "", "First sale/purchase date to list (YYYY-MM-DD)")
	exportCmd.Flags().String("outbound-to", "", "Last sale/purchase date to list (YYYY-MM-DD)")
	exportCmd.Flags().String("payment-from", "", "First payment date to list (YYYY-MM-DD)")
	exportCmd.Flags().String("payment-to", "", "Last payment date to list (YYYY-MM-DD)")
	exportCmd.Flags().String("product", "", "Only list sales/purchases of this product code")
	exportCmd.Flags().StringP("output", "o", "", "Output file (relative names go under EXPORT_DIR)")
	exportCmd.Flags().Bool("json", false, "Print the result as JSON")
	exportCmd.Flags().Bool("disambiguate", false, "Rename colliding sheet names to \"name (2)\", \"name (3)\", ...")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	outboundFrom, _ := cmd.Flags().GetString("outbound-from")
	outboundTo, _ := cmd.Flags().GetString("outbound-to")
	paymentFrom, _ := cmd.Flags().GetString("payment-from")
	paymentTo, _ := cmd.Flags().GetString("payment-to")
	product, _ := cmd.Flags().GetString("product")
	output, _ := cmd.Flags().GetString("output")
	asJSON, _ := cmd.Flags().GetBool("json")
	disambiguate, _ := cmd.Flags().GetBool("disambiguate")

	db, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := cfg.RunOptions()
	run := reconcile.NewRun(ledger.NewStore(db), workbook.NewWriter(opts.Font), opts)
	res := run.Execute(ctx, reconcile.Filters{
		OutboundFrom: outboundFrom,
		OutboundTo:   outboundTo,
		PaymentFrom:  paymentFrom,
		PaymentTo:    paymentTo,
		ProductCode:  product,
		Output:       output,
		Disambiguate: disambiguate,
	})

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	} else {
		printResult(cmd, res)
	}

	if !res.Success {
		return fmt.Errorf("%s", res.Message)
	}
	log.Info().Str("file", res.FilePath).Msg("Export completed")
	return nil
}

func printResult(cmd *cobra.Command, res reconcile.Result) {
	out := cmd.OutOrStdout()
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if !res.Success {
		return
	}
	fmt.Fprintf(out, "customers: %d\nsuppliers: %d\nsheets:    %d\nfile:      %s\n",
		res.TotalCustomers, res.TotalSuppliers, res.TotalSheets, res.FilePath)
}
