package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"invoicenorm/pkg/models"
)

// WriteRecordJSON encodes rec as indented JSON. Non-ASCII text is kept as is.
func WriteRecordJSON(w io.Writer, rec *models.InvoiceRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("WriteRecordJSON: %w", err)
	}
	return nil
}

// WriteRecordFile writes rec to dir/name.json and returns the file path.
func WriteRecordFile(dir, name string, rec *models.InvoiceRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("WriteRecordFile: failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("WriteRecordFile: %w", err)
	}
	if err := WriteRecordJSON(f, rec); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
