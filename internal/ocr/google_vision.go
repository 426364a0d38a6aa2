// Package ocr provides OCR-only document analysis using Google Cloud Vision.
//
// Vision returns plain text, so the analysis.Result it produces carries page
// lines but no structured fields or tables; the normalizer then falls back to
// its text strategies.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Cloud Vision API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Maximum pages: 5 pages for synchronous PDF processing
//   - Supported formats: PDF, TIFF, GIF and common image formats
package ocr

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"invoicenorm/internal/analysis"
	"invoicenorm/internal/logger"
)

const (
	// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB)
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of pages for synchronous processing
	MaxPagesSync = 5
)

// VisionService implements analysis.Analyzer using Google Cloud Vision.
type VisionService struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

var _ analysis.Analyzer = (*VisionService)(nil)

// NewVisionService creates a new OCR service with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewVisionService(ctx context.Context) (*VisionService, error) {
	const op = "NewVisionService"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return NewVisionServiceWithClient(client), nil
}

// NewVisionServiceWithClient creates a new OCR service with an explicit client (for testing).
func NewVisionServiceWithClient(client *vision.ImageAnnotatorClient) *VisionService {
	return &VisionService{
		client: client,
		log:    logger.WithComponent("vision-ocr"),
	}
}

// Analyze runs document text detection. PDFs and TIFFs go through the file
// API, other images through the image API.
func (g *VisionService) Analyze(ctx context.Context, data []byte, mimeType string) (*analysis.Result, error) {
	const op = "Analyze"
	startTime := time.Now()

	if len(data) > MaxFileSizeBytes {
		return nil, WrapOCRError(op, ErrFileTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}
	if mimeType == "" {
		detected, err := analysis.DetectMIMEType(data)
		if err != nil {
			return nil, WrapOCRError(op, ErrUnsupportedFormat, err.Error())
		}
		mimeType = detected
	}

	var pages []*visionpb.AnnotateImageResponse
	var err error
	switch mimeType {
	case analysis.MIMEPDF, analysis.MIMETIFF, analysis.MIMEGIF:
		pages, err = g.annotateFile(ctx, data, mimeType)
	default:
		pages, err = g.annotateImage(ctx, data)
	}
	if err != nil {
		return nil, analyzeError(err, mimeType, "Vision API call failed")
	}

	if err := checkPages(pages); err != nil {
		return nil, analyzeError(err, mimeType, "failed to process Vision API response")
	}

	res := analysis.FromVision(pages)
	if len(res.TextLines()) == 0 {
		return nil, analyzeError(ErrEmptyDocument, mimeType, "")
	}

	confidence, languages := pageMetadata(pages)
	g.log.Debug().
		Str("mime_type", mimeType).
		Int("pages", len(pages)).
		Float32("confidence", confidence).
		Strs("languages", languages).
		Dur("duration", time.Since(startTime)).
		Msg("Vision OCR completed")

	return res, nil
}

func (g *VisionService) annotateFile(ctx context.Context, data []byte, mimeType string) ([]*visionpb.AnnotateImageResponse, error) {
	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  data,
					MimeType: mimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, fmt.Errorf("%w: no response from Vision API", ErrOCRFailed)
	}

	fileResp := resp.GetResponses()[0]
	if fileResp.GetError() != nil {
		return nil, fmt.Errorf("%w: %s", ErrOCRFailed, fileResp.GetError().GetMessage())
	}
	return fileResp.GetResponses(), nil
}

func (g *VisionService) annotateImage(ctx context.Context, data []byte) ([]*visionpb.AnnotateImageResponse, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}
	return resp.GetResponses(), nil
}

// checkPages rejects empty, oversized and failed page responses.
func checkPages(pages []*visionpb.AnnotateImageResponse) error {
	if len(pages) == 0 {
		return ErrEmptyDocument
	}
	if len(pages) > MaxPagesSync {
		return fmt.Errorf("%w: document has %d pages", ErrTooManyPages, len(pages))
	}
	for i, page := range pages {
		if page.GetError() != nil {
			return fmt.Errorf("%w: page %d: %s", ErrOCRFailed, i+1, page.GetError().GetMessage())
		}
	}
	return nil
}

// pageMetadata averages block confidences and collects detected languages.
func pageMetadata(pages []*visionpb.AnnotateImageResponse) (float32, []string) {
	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)

	for _, page := range pages {
		for _, p := range page.GetFullTextAnnotation().GetPages() {
			for _, lang := range p.GetProperty().GetDetectedLanguages() {
				if code := strings.TrimSpace(lang.GetLanguageCode()); code != "" {
					languageSet[code] = true
				}
			}
			for _, block := range p.GetBlocks() {
				if block.GetConfidence() > 0 {
					confidenceSum += block.GetConfidence()
					confidenceCount++
				}
			}
		}
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	languages := make([]string, 0, len(languageSet))
	for lang := range languageSet {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return avgConfidence, languages
}

// Close closes the underlying Vision client.
func (g *VisionService) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
