package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"invoicenorm/internal/batch"
	"invoicenorm/internal/export"
	"invoicenorm/pkg/models"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func sampleEntries() []export.Entry {
	full := models.NewInvoiceRecord()
	full.Vendor.Name = models.StringPtr("Andorra Telecom SAU")
	full.Vendor.TaxID = models.StringPtr("L-713456-T")
	full.InvoiceNumber = models.StringPtr("AT-2024-0042")
	full.IssueDate = models.StringPtr("15/03/2024")
	full.TaxableBase = amount("75")
	full.TaxAmount = amount("7.125")
	full.Total = amount("82.13")
	full.TaxCode = models.StringPtr("IGI_9_5")
	full.ClassificationCategory = models.StringPtr("Telecom")
	full.Lines = []models.LineItem{
		{
			Description:     models.StringPtr("Fibra 300Mb"),
			Quantity:        amount("2"),
			UnitPrice:       amount("30"),
			TaxRatePercent:  amount("9.5"),
			TaxAmount:       amount("5.70"),
			LineTotal:       amount("65.70"),
			TaxCode:         models.StringPtr("IGI_9_5"),
			CostAccountCode: models.StringPtr("620000"),
		},
		{Description: models.StringPtr("Router"), LineTotal: amount("16.43")},
	}

	partial := models.NewInvoiceRecord()
	partial.Vendor.Name = models.StringPtr("Cafè Pirineu")

	return []export.Entry{
		{Name: "telecom", Record: full, Status: batch.StatusSuccess},
		{Name: "ticket", Record: partial, Status: batch.StatusWarning, Warnings: []string{"vendor tax id not found", "no total"}},
	}
}

func TestSummaryRowStrings(t *testing.T) {
	entries := sampleEntries()

	got := entries[0].SummaryRow().Strings()
	want := []string{
		"telecom", "Andorra Telecom SAU", "L-713456-T", "AT-2024-0042", "15/03/2024",
		"75.00", "7.13", "82.13", "EUR", "IGI_9_5", "Telecom", "success", "",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Strings() = %q\nwant %q", got, want)
	}
	if len(got) != len(export.SummaryHeader) {
		t.Errorf("row has %d cells, header has %d", len(got), len(export.SummaryHeader))
	}

	partial := entries[1].SummaryRow()
	if partial.Total.Valid {
		t.Error("partial Total should stay null")
	}
	if partial.Warnings != "vendor tax id not found; no total" {
		t.Errorf("Warnings = %q", partial.Warnings)
	}
}

func TestEntriesFromReport(t *testing.T) {
	rec := models.NewInvoiceRecord()
	report := &batch.Report{Results: []batch.Result{
		{Name: "a", Record: rec, Status: batch.StatusSuccess},
		{Name: "b", Status: batch.StatusError, Err: os.ErrNotExist},
		{Name: "c", Record: rec, Status: batch.StatusWarning, Warnings: []string{"w"}},
	}}

	entries := export.EntriesFromReport(report)
	if len(entries) != 2 || entries[0].Name != "a" || entries[1].Name != "c" {
		t.Fatalf("EntriesFromReport() = %+v", entries)
	}
	if entries[1].Status != batch.StatusWarning || len(entries[1].Warnings) != 1 {
		t.Errorf("entry c = %+v", entries[1])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sampleEntries()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\ufeff") {
		t.Fatal("CSV does not start with a UTF-8 BOM")
	}

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if !reflect.DeepEqual(rows[0], export.SummaryHeader) {
		t.Errorf("header = %q", rows[0])
	}
	ticket := rows[2]
	if ticket[1] != "Cafè Pirineu" || ticket[5] != "" || ticket[7] != "" || ticket[11] != "warning" {
		t.Errorf("ticket row = %q", ticket)
	}
}

func TestWriteCSVFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "summary.csv")
	if err := export.WriteCSVFile(path, nil); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "\ufefffile,vendor,") {
		t.Errorf("file starts with %q", data[:min(len(data), 20)])
	}
}

func TestWriteRecordJSON(t *testing.T) {
	decimal.MarshalJSONWithoutQuotes = true
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = false })

	rec := sampleEntries()[0].Record
	path, err := export.WriteRecordFile(t.TempDir(), "telecom", rec)
	if err != nil {
		t.Fatalf("WriteRecordFile() error = %v", err)
	}
	if filepath.Base(path) != "telecom.json" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if total, ok := decoded["total"].(float64); !ok || total != 82.13 {
		t.Errorf("total = %#v, want number 82.13", decoded["total"])
	}
	if decoded["due_date"] != nil {
		t.Errorf("due_date = %#v, want null", decoded["due_date"])
	}

	lines := decoded["lines"].([]any)
	router := lines[1].(map[string]any)
	if router["quantity"] != nil || router["tax_code"] != nil {
		t.Errorf("router line = %v, want null quantity and tax_code", router)
	}
	if !strings.Contains(string(data), "Andorra Telecom SAU") {
		t.Error("vendor name missing from output")
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, sampleEntries(), "run-42"); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Summary", "Lines"}) {
		t.Errorf("sheets = %v", got)
	}

	raw := excelize.Options{RawCellValue: true}
	cells := []struct {
		sheet, cell, want string
	}{
		{"Summary", "A1", "file"},
		{"Summary", "A2", "telecom"},
		{"Summary", "H2", "82.13"},
		{"Summary", "B3", "Cafè Pirineu"},
		{"Summary", "H3", ""},
		{"Summary", "L3", "warning"},
		{"Lines", "C2", "Fibra 300Mb"},
		{"Lines", "H2", "65.7"},
		{"Lines", "A3", "telecom"},
		{"Lines", "B3", "2"},
		{"Lines", "D3", ""},
		{"Lines", "A4", ""},
	}
	for _, c := range cells {
		got, err := f.GetCellValue(c.sheet, c.cell, raw)
		if err != nil {
			t.Errorf("%s!%s: %v", c.sheet, c.cell, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, got, c.want)
		}
	}

	props, err := f.GetDocProps()
	if err != nil {
		t.Fatalf("GetDocProps() error = %v", err)
	}
	if props.Identifier != "run-42" || props.Creator != "invoicenorm" {
		t.Errorf("doc props = %+v", props)
	}
}

func TestSpreadsheetID(t *testing.T) {
	id, err := export.SpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	if err != nil || id != "1AbC-d_9" {
		t.Errorf("SpreadsheetID() = %q, %v", id, err)
	}
	if _, err := export.SpreadsheetID("https://example.com/sheet"); err == nil {
		t.Error("SpreadsheetID(non-sheets URL) error = nil")
	}
}

func TestSheetValues(t *testing.T) {
	at := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	values := export.SheetValues(sampleEntries(), at)

	if len(values) != 2 {
		t.Fatalf("rows = %d, want 2", len(values))
	}
	row := values[0]
	if len(row) != len(export.SummaryHeader)+1 {
		t.Errorf("row has %d cells, want %d", len(row), len(export.SummaryHeader)+1)
	}
	if row[7] != "82.13" || row[len(row)-1] != "2024-03-15 09:30:00" {
		t.Errorf("row = %v", row)
	}
}
