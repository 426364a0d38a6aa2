package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicenorm/internal/config"
	"invoicenorm/internal/export"
	"invoicenorm/internal/logger"
	"invoicenorm/pkg/models"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [analyze-result.json]",
	Short: "Normalize a saved Azure Document Intelligence analyze result",
	Long: `Read an Azure Document Intelligence analyze-result JSON file (prebuilt
invoice or layout model) and print the canonical invoice record as JSON.

No external service is called. Both the full operation response
({"analyzeResult": {...}}) and a bare analyze result are accepted.

Optional environment variables:
  DEFAULT_CURRENCY - Currency used when the document names none (default: EUR)
  CLASSIFICATION_RULES - YAML file overriding the classification rules`,
	Example: `  # Print the record
  invoicenorm normalize result.json

  # Save the record and show validation warnings
  invoicenorm normalize result.json -o record.json --warnings`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	normalizeCmd.Flags().Bool("warnings", false, "Print validation warnings to stderr")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("normalize")

	outputPath, _ := cmd.Flags().GetString("output")
	showWarnings, _ := cmd.Flags().GetBool("warnings")
	inputPath := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	rec, warnings, err := p.fromResultFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to normalize %s: %w", inputPath, err)
	}

	log.Info().
		Str("file", inputPath).
		Int("lines", len(rec.Lines)).
		Int("warnings", len(warnings)).
		Msg("Invoice normalized")

	if showWarnings {
		printWarnings(warnings)
	}
	return writeRecord(rec, outputPath)
}

// writeRecord prints rec as JSON to stdout, or to outputPath when set.
func writeRecord(rec *models.InvoiceRecord, outputPath string) error {
	if outputPath == "" {
		return export.WriteRecordJSON(os.Stdout, rec)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := export.WriteRecordJSON(f, rec); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Record written to %s\n", outputPath)
	return nil
}

func printWarnings(warnings []string) {
	if len(warnings) == 0 {
		fmt.Fprintln(os.Stderr, "✅ No validation warnings")
		return
	}
	fmt.Fprintf(os.Stderr, "⚠️  %d validation warning(s):\n", len(warnings))
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  - %s\n", w)
	}
}
