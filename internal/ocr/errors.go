package ocr

import (
	"errors"
	"fmt"
)

// Sentinel errors for Vision OCR.
var (
	// ErrFileTooLarge is returned for documents over MaxFileSizeBytes, the
	// Vision limit for synchronous requests.
	ErrFileTooLarge = errors.New("file size exceeds the maximum limit (20MB)")

	// ErrUnsupportedFormat is returned when the document is neither a PDF nor a
	// supported image.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrOCRFailed is returned when Vision rejects the request or a page.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS is set and no default credentials are found.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrTooManyPages is returned for files over MaxPagesSync pages.
	ErrTooManyPages = errors.New("document has too many pages (maximum 5 pages for synchronous processing)")

	// ErrEmptyDocument is returned when the document contains no readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")
)

// OCRError records the failed operation and, once known, the document type.
type OCRError struct {
	// Op is the operation that failed (e.g., "Analyze").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// MIMEType is the type the document was sent as, if it got that far.
	MIMEType string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	op := e.Op
	if e.MIMEType != "" {
		op = fmt.Sprintf("%s [%s]", e.Op, e.MIMEType)
	}
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}

	return &OCRError{Op: op, Err: err, Details: details}
}

// analyzeError wraps a failure of a request sent as mimeType.
func analyzeError(err error, mimeType, details string) error {
	return &OCRError{Op: "Analyze", Err: err, Details: details, MIMEType: mimeType}
}
