package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"invoicenorm/internal/batch"
	"invoicenorm/internal/config"
	"invoicenorm/internal/export"
	"invoicenorm/internal/logger"
	"invoicenorm/pkg/models"
)

var batchCmd = &cobra.Command{
	Use:   "batch [folder-path]",
	Short: "Normalize every invoice in a folder",
	Long: `Normalize all invoices in a folder in parallel and write one JSON record
per document plus a summary (summary.csv and summary.xlsx) to the output folder.

By default PDFs and images are sent to the configured analyzer. With
--from-json the folder is expected to hold saved Azure Document Intelligence
analyze results instead and no external service is called.

A failing document is reported and skipped; it never stops the others.

Optional environment variables:
  INPUT_DIR - Folder used when no argument is given (default: data/input)
  OUTPUT_DIR - Output folder (default: data/output)
  BATCH_WORKERS - Number of parallel workers (default: 8)
  GOOGLE_SHEET_URL - Google Sheet the summary is appended to with --sheets
  GOOGLE_SHEET_WORKSHEET - Worksheet name (default: Invoices)`,
	Example: `  # Analyze all PDFs and images in ./invoices
  invoicenorm batch ./invoices

  # Normalize saved analyze results offline
  invoicenorm batch ./results --from-json -o ./out

  # Also append the summary to Google Sheets
  invoicenorm batch ./invoices --sheets`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output", "o", "", "Output folder (default: OUTPUT_DIR)")
	batchCmd.Flags().Int("workers", 0, "Number of parallel workers (default: BATCH_WORKERS)")
	batchCmd.Flags().String("engine", "", "Analyzer engine: docai or vision (default: ANALYZER_ENGINE)")
	batchCmd.Flags().Bool("from-json", false, "Read saved Azure analyze-result JSON files instead of documents")
	batchCmd.Flags().Bool("xlsx", true, "Write summary.xlsx next to summary.csv")
	batchCmd.Flags().Bool("sheets", false, "Append the summary to GOOGLE_SHEET_URL")
	batchCmd.Flags().Int("timeout", 30, "Overall timeout in minutes")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch-cmd")

	outputDir, _ := cmd.Flags().GetString("output")
	workers, _ := cmd.Flags().GetInt("workers")
	engine, _ := cmd.Flags().GetString("engine")
	fromJSON, _ := cmd.Flags().GetBool("from-json")
	writeXLSX, _ := cmd.Flags().GetBool("xlsx")
	toSheets, _ := cmd.Flags().GetBool("sheets")
	timeoutMins, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	folderPath := cfg.InputDir
	if len(args) == 1 {
		folderPath = args[0]
	}
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	if workers <= 0 {
		workers = cfg.BatchWorkers
	}
	if toSheets && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required with --sheets")
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(time.Duration(timeoutMins) * time.Minute)
	defer cancel()

	extensions := batch.DocumentExtensions
	if fromJSON {
		extensions = batch.ResultExtensions
	}
	inputs, err := batch.FindInputs(folderPath, extensions, outputDir)
	if err != nil {
		return fmt.Errorf("failed to find input files: %w", err)
	}
	if len(inputs) == 0 {
		fmt.Printf("No input files found in %s.\n", folderPath)
		return nil
	}

	var process batch.ProcessFunc
	if fromJSON {
		process = func(_ context.Context, path string) (*models.InvoiceRecord, []string, error) {
			return p.fromResultFile(path)
		}
	} else {
		analyzer, err := newAnalyzer(ctx, cfg, engine)
		if err != nil {
			return err
		}
		defer analyzer.Close()
		process = func(ctx context.Context, path string) (*models.InvoiceRecord, []string, error) {
			return p.fromDocument(ctx, analyzer, path)
		}
	}

	log.Info().
		Str("folder", folderPath).
		Str("output", outputDir).
		Int("files", len(inputs)).
		Int("workers", workers).
		Bool("from_json", fromJSON).
		Msg("Starting batch")

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                         INVOICE BATCH")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Folder: %s\n", folderPath)
	fmt.Printf("Output: %s\n", outputDir)
	fmt.Printf("Processing %d files with %d workers...\n\n", len(inputs), workers)

	report := batch.NewRunner(process, workers).
		OnProgress(printProgress).
		Run(ctx, inputs)

	for _, res := range report.Succeeded() {
		if _, err := export.WriteRecordFile(outputDir, res.Name, res.Record); err != nil {
			return err
		}
	}

	entries := export.EntriesFromReport(report)
	csvPath := filepath.Join(outputDir, "summary.csv")
	if err := export.WriteCSVFile(csvPath, entries); err != nil {
		return err
	}
	if writeXLSX {
		if err := export.WriteXLSXFile(filepath.Join(outputDir, "summary.xlsx"), entries, report.RunID); err != nil {
			return err
		}
	}

	success, warning, failed := report.Counts()
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 RESULT")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Run:           %s\n", report.RunID)
	fmt.Printf("Succeeded:     %d\n", success)
	if warning > 0 {
		fmt.Printf("With warnings: %d\n", warning)
	}
	if failed > 0 {
		fmt.Printf("Failed:        %d\n", failed)
	}
	fmt.Printf("Summary:       %s\n", csvPath)

	if toSheets {
		writer, err := export.NewSheetsWriter(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return fmt.Errorf("failed to create Google Sheets writer: %w", err)
		}
		if err := writer.AppendSummary(ctx, cfg.GoogleSheetWorksheet, entries); err != nil {
			return fmt.Errorf("failed to write to Google Sheet: %w", err)
		}
		fmt.Printf("Sheet:         %s (%d rows)\n", cfg.GoogleSheetWorksheet, len(entries))
	}
	fmt.Println(strings.Repeat("=", 80))

	return nil
}

func printProgress(done, total int, res batch.Result) {
	fmt.Printf("[%d/%d] %s - %s", done, total, filepath.Base(res.Path), statusEmoji(res.Status))
	switch {
	case res.Err != nil:
		fmt.Printf(" (%s)", res.Err.Error())
	case res.Record != nil && res.Record.Total.Valid:
		fmt.Printf(" (%s %s)", res.Record.Total.Decimal.StringFixed(2), res.Record.Currency)
	}
	fmt.Println()
}

func statusEmoji(status batch.Status) string {
	switch status {
	case batch.StatusSuccess:
		return "✅"
	case batch.StatusWarning:
		return "⚠️"
	default:
		return "❌"
	}
}
