package ocr

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/genproto/googleapis/rpc/status"
)

func TestAnalyzeRejectsBeforeCallingService(t *testing.T) {
	svc := NewVisionServiceWithClient(nil)

	_, err := svc.Analyze(context.Background(), make([]byte, MaxFileSizeBytes+1), "application/pdf")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Analyze(oversized) error = %v, want ErrFileTooLarge", err)
	}

	_, err = svc.Analyze(context.Background(), []byte("plain text"), "")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Analyze(text) error = %v, want ErrUnsupportedFormat", err)
	}

	if err := svc.Close(); err != nil {
		t.Errorf("Close() with no client = %v", err)
	}
}

func TestCheckPages(t *testing.T) {
	page := &visionpb.AnnotateImageResponse{}
	failed := &visionpb.AnnotateImageResponse{Error: &status.Status{Code: 3, Message: "bad image"}}

	tests := []struct {
		name  string
		pages []*visionpb.AnnotateImageResponse
		want  error
	}{
		{"ok", []*visionpb.AnnotateImageResponse{page, page}, nil},
		{"empty", nil, ErrEmptyDocument},
		{"too many", []*visionpb.AnnotateImageResponse{page, page, page, page, page, page}, ErrTooManyPages},
		{"page error", []*visionpb.AnnotateImageResponse{page, failed}, ErrOCRFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := checkPages(tt.pages); !errors.Is(err, tt.want) {
				t.Errorf("checkPages() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPageMetadata(t *testing.T) {
	page := func(confidences []float32, languages ...string) *visionpb.AnnotateImageResponse {
		p := &visionpb.Page{Property: &visionpb.TextAnnotation_TextProperty{}}
		for _, l := range languages {
			p.Property.DetectedLanguages = append(p.Property.DetectedLanguages,
				&visionpb.TextAnnotation_DetectedLanguage{LanguageCode: l})
		}
		for _, c := range confidences {
			p.Blocks = append(p.Blocks, &visionpb.Block{Confidence: c})
		}
		return &visionpb.AnnotateImageResponse{
			FullTextAnnotation: &visionpb.TextAnnotation{Pages: []*visionpb.Page{p}},
		}
	}

	confidence, languages := pageMetadata([]*visionpb.AnnotateImageResponse{
		page([]float32{0.5, 1.0}, "es", "ca"),
		page([]float32{0, 0.75}, "es", " "),
	})

	if confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", confidence)
	}
	if !reflect.DeepEqual(languages, []string{"ca", "es"}) {
		t.Errorf("languages = %v, want [ca es]", languages)
	}
}
