// Package docai runs invoices through a Google Document AI invoice parser and
// returns the response as an analysis.Result.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_CLOUD_PROJECT: Google Cloud project ID
//   - GOOGLE_CLOUD_LOCATION: Processing location ("us" or "eu")
//   - DOCUMENT_AI_PROCESSOR_ID: Invoice parser processor ID
//
// Document AI API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Supported formats: PDF, TIFF, GIF, JPEG, PNG, BMP, WEBP
//   - Processing time: Typically 5-15 seconds per invoice
package docai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"invoicenorm/internal/analysis"
	"invoicenorm/internal/logger"
)

// MaxDocumentSizeBytes is the maximum document size for processing (20MB)
const MaxDocumentSizeBytes = 20 * 1024 * 1024

// Config holds configuration for Google Document AI processing.
type Config struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	// Should match where your Document AI processor is created.
	Location string

	// ProcessorID is the Document AI invoice parser processor ID.
	ProcessorID string

	// ProcessorVersion specifies a particular processor version.
	// If empty, uses the default version.
	ProcessorVersion string

	// Timeout is the maximum time to wait for processing.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Location: "eu",
		Timeout:  60 * time.Second,
	}
}

// Processor implements analysis.Analyzer using Google Document AI.
type Processor struct {
	client *documentai.DocumentProcessorClient
	config Config
	log    zerolog.Logger
}

var _ analysis.Analyzer = (*Processor)(nil)

// NewProcessor creates a processor with credentials from the environment
// (GOOGLE_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS).
func NewProcessor(ctx context.Context, config Config) (*Processor, error) {
	const op = "NewProcessor"

	if config.ProjectID == "" {
		return nil, WrapProcessingError(op, ErrInvalidConfiguration, "project ID is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapProcessingError(op, ErrInvalidConfiguration, "processor ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	var clientOptions []option.ClientOption

	// Non-US processors live behind a regional endpoint.
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	hasCredentials := false
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
		hasCredentials = true
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
		hasCredentials = true
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if !hasCredentials {
			return nil, WrapProcessingError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapProcessingError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return NewProcessorWithClient(config, client), nil
}

// NewProcessorWithClient creates a processor with an explicit client (for testing).
func NewProcessorWithClient(config Config, client *documentai.DocumentProcessorClient) *Processor {
	return &Processor{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}
}

// Analyze sends the document to the invoice parser.
func (p *Processor) Analyze(ctx context.Context, data []byte, mimeType string) (*analysis.Result, error) {
	const op = "Analyze"

	if len(data) > MaxDocumentSizeBytes {
		return nil, p.fail(op, ErrDocumentTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}
	if mimeType == "" {
		detected, err := analysis.DetectMIMEType(data)
		if err != nil {
			return nil, p.fail(op, ErrUnsupportedFormat, err.Error())
		}
		mimeType = detected
	}

	processCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	start := time.Now()
	req := &documentaipb.ProcessRequest{
		Name: p.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	}

	resp, err := p.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, p.handleProcessingError(op, err)
	}
	if resp.GetDocument() == nil {
		return nil, p.fail(op, ErrProcessingFailed, "no document in response")
	}

	doc := resp.GetDocument()
	p.log.Debug().
		Str("mime_type", mimeType).
		Int("entities", len(doc.GetEntities())).
		Int("pages", len(doc.GetPages())).
		Dur("duration", time.Since(start)).
		Msg("Document AI processing completed")

	return analysis.FromDocumentAI(doc), nil
}

// ProcessorName constructs the full processor resource name.
func (p *Processor) ProcessorName() string {
	if p.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			p.config.ProjectID, p.config.Location, p.config.ProcessorID, p.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		p.config.ProjectID, p.config.Location, p.config.ProcessorID)
}

// handleProcessingError converts Document AI errors to processing errors.
func (p *Processor) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED") || strings.Contains(errStr, "PermissionDenied"):
		return p.fail(op, ErrInvalidCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") || strings.Contains(errStr, "ResourceExhausted"):
		return p.fail(op, ErrQuotaExceeded, "Document AI API quota exceeded")
	case strings.Contains(errStr, "NOT_FOUND") || strings.Contains(errStr, "NotFound"):
		return p.fail(op, ErrProcessorNotFound, "processor not found")
	case strings.Contains(errStr, "INVALID_ARGUMENT") || strings.Contains(errStr, "InvalidArgument"):
		return p.fail(op, ErrUnsupportedFormat, "document format not supported or corrupted")
	case strings.Contains(errStr, "DeadlineExceeded") || strings.Contains(errStr, "context deadline exceeded"):
		return p.fail(op, context.DeadlineExceeded, "processing timeout")
	case strings.Contains(errStr, "Canceled") || strings.Contains(errStr, "context canceled"):
		return p.fail(op, ErrContextCanceled, "processing was canceled")
	default:
		return p.fail(op, ErrProcessingFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// Close closes the underlying Document AI client.
func (p *Processor) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
