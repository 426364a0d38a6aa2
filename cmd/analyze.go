package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"invoicenorm/internal/config"
	"invoicenorm/internal/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [document]",
	Short: "Analyze a PDF or image invoice and print the normalized record",
	Long: `Send a PDF or image invoice to Google Document AI (invoice parser) or
Google Vision OCR and print the canonical invoice record as JSON.

Document AI returns structured fields and tables. Vision returns text only, in
which case header fields, line items and totals are read from the text.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string

For the docai engine:
  GOOGLE_CLOUD_PROJECT - Your Google Cloud project ID
  GOOGLE_CLOUD_LOCATION - Processing location (us, eu)
  DOCUMENT_AI_PROCESSOR_ID - Your Document AI invoice processor ID

Optional environment variables:
  ANALYZER_ENGINE - docai or vision (default: docai)`,
	Example: `  # Analyze with Document AI
  invoicenorm analyze invoice.pdf

  # OCR a scanned receipt with Vision and save the record
  invoicenorm analyze scan.jpg --engine vision -o record.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().String("engine", "", "Analyzer engine: docai or vision (default: ANALYZER_ENGINE)")
	analyzeCmd.Flags().Bool("warnings", false, "Print validation warnings to stderr")
	analyzeCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("analyze")

	outputPath, _ := cmd.Flags().GetString("output")
	engine, _ := cmd.Flags().GetString("engine")
	showWarnings, _ := cmd.Flags().GetBool("warnings")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	docPath := args[0]

	if _, err := os.Stat(docPath); err != nil {
		return fmt.Errorf("document not found: %s", docPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(time.Duration(timeoutSecs) * time.Second)
	defer cancel()

	analyzer, err := newAnalyzer(ctx, cfg, engine)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	start := time.Now()
	rec, warnings, err := p.fromDocument(ctx, analyzer, docPath)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", docPath, err)
	}

	log.Info().
		Str("file", docPath).
		Str("engine", cfg.AnalyzerEngine).
		Int("lines", len(rec.Lines)).
		Int("warnings", len(warnings)).
		Dur("duration", time.Since(start)).
		Msg("Invoice analyzed")

	if showWarnings {
		printWarnings(warnings)
	}
	return writeRecord(rec, outputPath)
}

// signalContext returns a context canceled on SIGINT/SIGTERM or after timeout.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
