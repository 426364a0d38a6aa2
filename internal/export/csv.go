package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// utf8BOM lets spreadsheet tools detect the encoding of accented vendor names.
const utf8BOM = "\ufeff"

// WriteCSV writes the summary of entries with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	const op = "WriteCSV"

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}
	for _, e := range entries {
		if err := cw.Write(e.SummaryRow().Strings()); err != nil {
			return fmt.Errorf("%s: failed to write row for %s: %w", op, e.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// WriteCSVFile writes the summary CSV to path, creating parent directories.
func WriteCSVFile(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("WriteCSVFile: failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteCSVFile: %w", err)
	}
	if err := WriteCSV(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
