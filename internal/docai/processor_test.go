package docai

import (
	"context"
	"errors"
	"testing"
)

func TestNewProcessorRequiresIDs(t *testing.T) {
	tests := []Config{
		{ProcessorID: "abc"},
		{ProjectID: "acme"},
	}
	for _, cfg := range tests {
		_, err := NewProcessor(context.Background(), cfg)
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("NewProcessor(%+v) error = %v, want ErrInvalidConfiguration", cfg, err)
		}
	}
}

func TestProcessorName(t *testing.T) {
	p := NewProcessorWithClient(Config{ProjectID: "acme", Location: "eu", ProcessorID: "abc"}, nil)
	if got, want := p.ProcessorName(), "projects/acme/locations/eu/processors/abc"; got != want {
		t.Errorf("ProcessorName() = %q, want %q", got, want)
	}

	p.config.ProcessorVersion = "pretrained-invoice-v2.0"
	want := "projects/acme/locations/eu/processors/abc/processorVersions/pretrained-invoice-v2.0"
	if got := p.ProcessorName(); got != want {
		t.Errorf("ProcessorName() = %q, want %q", got, want)
	}
}

func TestAnalyzeRejectsBeforeCallingService(t *testing.T) {
	p := NewProcessorWithClient(DefaultConfig(), nil)

	_, err := p.Analyze(context.Background(), make([]byte, MaxDocumentSizeBytes+1), "application/pdf")
	if !errors.Is(err, ErrDocumentTooLarge) {
		t.Errorf("Analyze(oversized) error = %v, want ErrDocumentTooLarge", err)
	}

	_, err = p.Analyze(context.Background(), []byte("plain text"), "")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Analyze(text) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestHandleProcessingError(t *testing.T) {
	p := NewProcessorWithClient(Config{ProcessorID: "abc"}, nil)

	tests := []struct {
		msg  string
		want error
	}{
		{"rpc error: code = PermissionDenied desc = denied", ErrInvalidCredentials},
		{"rpc error: code = ResourceExhausted desc = quota", ErrQuotaExceeded},
		{"rpc error: code = NotFound desc = processor", ErrProcessorNotFound},
		{"rpc error: code = InvalidArgument desc = bad pdf", ErrUnsupportedFormat},
		{"context deadline exceeded", context.DeadlineExceeded},
		{"rpc error: code = Canceled desc = context canceled", ErrContextCanceled},
		{"rpc error: code = Internal desc = boom", ErrProcessingFailed},
	}

	for _, tt := range tests {
		err := p.handleProcessingError("Analyze", errors.New(tt.msg))
		if !errors.Is(err, tt.want) {
			t.Errorf("handleProcessingError(%q) = %v, want %v", tt.msg, err, tt.want)
		}
		var procErr *ProcessingError
		if !errors.As(err, &procErr) || procErr.Op != "Analyze" || procErr.ProcessorID != "abc" {
			t.Errorf("handleProcessingError(%q) = %#v, want *ProcessingError", tt.msg, err)
		}
	}
}
