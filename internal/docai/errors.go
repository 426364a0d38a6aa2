package docai

import (
	"errors"
	"fmt"
)

// Sentinel errors for Document AI processing.
var (
	// ErrUnsupportedFormat is returned when the document is neither a PDF nor
	// an image format the processor accepts.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrProcessingFailed is returned when Document AI processing fails.
	ErrProcessingFailed = errors.New("document AI processing failed")

	// ErrInvalidCredentials is returned when the credentials lack permission
	// to call the processor.
	ErrInvalidCredentials = errors.New("invalid Google Cloud credentials")

	// ErrMissingCredentials is returned when Google Cloud credentials are not configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials")

	// ErrInvalidConfiguration is returned when project or processor is unset.
	ErrInvalidConfiguration = errors.New("invalid Document AI configuration")

	// ErrProcessorNotFound is returned when the processor does not exist in
	// the configured project and location.
	ErrProcessorNotFound = errors.New("Document AI processor not found")

	// ErrQuotaExceeded is returned when Document AI API quota limits are exceeded.
	ErrQuotaExceeded = errors.New("Document AI API quota exceeded")

	// ErrDocumentTooLarge is returned when the document exceeds size limits.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size limit")

	// ErrContextCanceled is returned when the caller canceled the request.
	ErrContextCanceled = errors.New("document processing was canceled")
)

// ProcessingError records which operation failed, on which processor.
type ProcessingError struct {
	// Op is the operation that failed (e.g., "Analyze").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// ProcessorID is set for failures of a configured processor.
	ProcessorID string
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	var b []byte
	b = fmt.Appendf(b, "docai: %s failed", e.Op)
	if e.ProcessorID != "" {
		b = fmt.Appendf(b, " (processor: %s)", e.ProcessorID)
	}
	if e.Details != "" {
		b = fmt.Appendf(b, ": %s", e.Details)
	}
	b = fmt.Appendf(b, ": %v", e.Err)
	return string(b)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// WrapProcessingError wraps an error as a ProcessingError if it isn't already one.
func WrapProcessingError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var procErr *ProcessingError
	if errors.As(err, &procErr) {
		return err
	}

	return &ProcessingError{Op: op, Err: err, Details: details}
}

// fail is WrapProcessingError stamped with the processor's ID.
func (p *Processor) fail(op string, err error, details string) error {
	wrapped := WrapProcessingError(op, err, details)
	var procErr *ProcessingError
	if errors.As(wrapped, &procErr) && procErr.ProcessorID == "" {
		procErr.ProcessorID = p.config.ProcessorID
	}
	return wrapped
}
