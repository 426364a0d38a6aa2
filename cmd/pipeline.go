package cmd

import (
	"context"
	"fmt"
	"os"

	"invoicenorm/internal/analysis"
	"invoicenorm/internal/classify"
	"invoicenorm/internal/config"
	"invoicenorm/internal/docai"
	"invoicenorm/internal/invoice"
	"invoicenorm/internal/ocr"
	"invoicenorm/pkg/models"
)

// pipeline turns analysis results into classified, validated records. It is
// safe for concurrent use.
type pipeline struct {
	normalizer *invoice.Normalizer
	classifier *classify.Classifier
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	rules := invoice.DefaultRules()
	rules.DefaultCurrency = cfg.DefaultCurrency
	normalizer, err := invoice.New(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}

	classRules := classify.DefaultRules()
	if cfg.ClassificationRules != "" {
		classRules, err = classify.LoadRules(cfg.ClassificationRules)
		if err != nil {
			return nil, err
		}
	}

	return &pipeline{
		normalizer: normalizer,
		classifier: classify.New(classRules),
	}, nil
}

// finish normalizes res, classifies the record and returns the validation
// warnings.
func (p *pipeline) finish(res *analysis.Result) (*models.InvoiceRecord, []string) {
	rec := p.normalizer.Normalize(res)
	p.classifier.Classify(rec)
	return rec, p.normalizer.Validate(rec).Warnings
}

// fromResultFile normalizes a saved Azure analyze-result JSON file.
func (p *pipeline) fromResultFile(path string) (*models.InvoiceRecord, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open analyze result: %w", err)
	}
	defer f.Close()

	res, err := analysis.DecodeAzure(f)
	if err != nil {
		return nil, nil, err
	}
	rec, warnings := p.finish(res)
	return rec, warnings, nil
}

// fromDocument sends a document file through the analyzer and normalizes the
// result.
func (p *pipeline) fromDocument(ctx context.Context, analyzer analysis.Analyzer, path string) (*models.InvoiceRecord, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}

	mimeType, err := analysis.DetectMIMEType(data)
	if err != nil {
		return nil, nil, err
	}

	res, err := analyzer.Analyze(ctx, data, mimeType)
	if err != nil {
		return nil, nil, err
	}
	rec, warnings := p.finish(res)
	return rec, warnings, nil
}

// newAnalyzer creates the analyzer selected by engine, falling back to the
// configured one when engine is empty.
func newAnalyzer(ctx context.Context, cfg *config.Config, engine string) (analysis.Analyzer, error) {
	if engine != "" {
		cfg.AnalyzerEngine = engine
	}
	if err := cfg.ValidateForEngine(); err != nil {
		return nil, err
	}

	switch cfg.AnalyzerEngine {
	case config.EngineDocumentAI:
		dc := docai.DefaultConfig()
		dc.ProjectID = cfg.GoogleCloudProject
		dc.Location = cfg.GoogleCloudLocation
		dc.ProcessorID = cfg.DocumentAIProcessorID
		dc.ProcessorVersion = cfg.DocumentAIProcessorVersion
		return docai.NewProcessor(ctx, dc)
	case config.EngineVision:
		return ocr.NewVisionService(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown analyzer engine %q", config.ErrInvalidConfig, cfg.AnalyzerEngine)
	}
}
