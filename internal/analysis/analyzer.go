package analysis

import (
	"bytes"
	"context"
	"net/http"
)

// Analyzer runs a document-understanding service over raw document bytes.
type Analyzer interface {
	// Analyze sends the document to the service and converts its response.
	Analyze(ctx context.Context, data []byte, mimeType string) (*Result, error)

	// Close releases the underlying client.
	Close() error
}

// Supported document MIME types.
const (
	MIMEPDF  = "application/pdf"
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMETIFF = "image/tiff"
	MIMEGIF  = "image/gif"
	MIMEWEBP = "image/webp"
	MIMEBMP  = "image/bmp"
)

// DetectMIMEType sniffs the document type from its leading bytes.
func DetectMIMEType(data []byte) (string, error) {
	const op = "DetectMIMEType"

	if len(data) == 0 {
		return "", WrapDecodeError(op, ErrEmptyInput, "")
	}
	if bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")) {
		return MIMETIFF, nil
	}

	switch ct := http.DetectContentType(data); ct {
	case MIMEPDF, MIMEPNG, MIMEJPEG, MIMEGIF, MIMEWEBP, MIMEBMP:
		return ct, nil
	default:
		return "", WrapDecodeError(op, ErrUnsupportedInput, "content type "+ct)
	}
}
