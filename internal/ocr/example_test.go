package ocr_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"invoicenorm/internal/analysis"
	"invoicenorm/internal/ocr"
)

// Example demonstrates basic usage of the OCR service.
func Example() {
	// Create context with timeout for OCR processing
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Create service - credentials handled internally from environment
	svc, err := ocr.NewVisionService(ctx)
	if err != nil {
		log.Fatalf("Failed to create OCR service: %v", err)
	}
	defer svc.Close()

	data, err := os.ReadFile("sample_invoice.pdf")
	if err != nil {
		log.Fatalf("Failed to read document: %v", err)
	}

	// An empty MIME type is sniffed from the content.
	res, err := svc.Analyze(ctx, data, "")
	if err != nil {
		log.Fatalf("Failed to analyze document: %v", err)
	}

	for _, line := range res.TextLines() {
		fmt.Println(line)
	}
}

// Example_image demonstrates OCR of a scanned receipt.
func Example_image() {
	ctx := context.Background()

	svc, err := ocr.NewVisionService(ctx)
	if err != nil {
		log.Fatalf("Failed to create OCR service: %v", err)
	}
	defer svc.Close()

	data, err := os.ReadFile("receipt.jpg")
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}

	res, err := svc.Analyze(ctx, data, analysis.MIMEJPEG)
	if err != nil {
		log.Fatalf("Failed to analyze image: %v", err)
	}

	fmt.Printf("Pages: %d, lines: %d\n", len(res.Pages), len(res.TextLines()))
}
