package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"invoicenorm/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicenorm",
	Short: "Normalize analyzed invoices into canonical invoice records",
	Long: `invoicenorm turns the output of a document-understanding service into a
canonical invoice record: parties, identifiers, dates, line items with
Andorran IGI tax codes, and reconciled totals.

Documents can be analyzed with Google Document AI or Google Vision OCR, or an
existing Azure Document Intelligence analyze-result JSON can be normalized
offline. Batches write one JSON record per document plus a summary as CSV,
XLSX and optionally a Google Sheet.`,
	Version:      version,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Records carry amounts as JSON numbers, missing amounts as null.
	decimal.MarshalJSONWithoutQuotes = true
}
