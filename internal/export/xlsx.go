package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"invoicenorm/pkg/models"
)

const (
	summarySheet = "Summary"
	linesSheet   = "Lines"
)

// LinesHeader names the columns of the per-line sheet.
var LinesHeader = []string{
	"file",
	"line",
	"description",
	"quantity",
	"unit_price",
	"tax_rate_percent",
	"tax_amount",
	"line_total",
	"tax_code",
	"cost_account_code",
}

// WriteXLSX writes a workbook with a summary sheet (one row per invoice) and
// a lines sheet (one row per invoice line). Amounts are numeric cells; missing
// amounts are left blank. runID is stored in the document properties.
func WriteXLSX(w io.Writer, entries []Entry, runID string) error {
	const op = "WriteXLSX"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := f.NewSheet(linesSheet); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	activeIndex, _ := f.GetSheetIndex(summarySheet)
	f.SetActiveSheet(activeIndex)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := writeHeader(f, summarySheet, SummaryHeader, headerStyle); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writeHeader(f, linesSheet, LinesHeader, headerStyle); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lineRow := 2
	for i, e := range entries {
		row := i + 2
		write := func(sheet string, col, row int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		s := e.SummaryRow()
		write(summarySheet, 1, row, s.File)
		write(summarySheet, 2, row, s.Vendor)
		write(summarySheet, 3, row, s.VendorTaxID)
		write(summarySheet, 4, row, s.InvoiceNumber)
		write(summarySheet, 5, row, s.IssueDate)
		for col, amount := range map[int]decimal.NullDecimal{6: s.TaxableBase, 7: s.TaxAmount, 8: s.Total} {
			if amount.Valid {
				write(summarySheet, col, row, amount.Decimal.InexactFloat64())
			}
		}
		write(summarySheet, 9, row, s.Currency)
		write(summarySheet, 10, row, s.TaxCode)
		write(summarySheet, 11, row, s.Classification)
		write(summarySheet, 12, row, s.Status)
		write(summarySheet, 13, row, s.Warnings)

		if e.Record == nil {
			continue
		}
		for n, l := range e.Record.Lines {
			write(linesSheet, 1, lineRow, e.Name)
			write(linesSheet, 2, lineRow, n+1)
			write(linesSheet, 3, lineRow, models.Deref(l.Description))
			for col, v := range map[int]decimal.NullDecimal{
				4: l.Quantity,
				5: l.UnitPrice,
				6: l.TaxRatePercent,
				7: l.TaxAmount,
				8: l.LineTotal,
			} {
				if v.Valid {
					write(linesSheet, col, lineRow, v.Decimal.InexactFloat64())
				}
			}
			write(linesSheet, 9, lineRow, models.Deref(l.TaxCode))
			write(linesSheet, 10, lineRow, models.Deref(l.CostAccountCode))
			lineRow++
		}
	}

	if len(entries) > 0 {
		if err := styleRange(f, summarySheet, 6, 8, len(entries)+1, amountStyle); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if lineRow > 2 {
		if err := styleRange(f, linesSheet, 5, 8, lineRow-1, amountStyle); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 28)
	_ = f.SetColWidth(summarySheet, "B", "B", 32)
	_ = f.SetColWidth(summarySheet, "C", "K", 16)
	_ = f.SetColWidth(summarySheet, "M", "M", 48)
	_ = f.SetColWidth(linesSheet, "A", "A", 28)
	_ = f.SetColWidth(linesSheet, "C", "C", 48)
	_ = f.SetColWidth(linesSheet, "D", "J", 14)

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:      "Invoice summary",
		Creator:    "invoicenorm",
		Identifier: runID,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%s: failed to write workbook: %w", op, err)
	}
	return nil
}

// WriteXLSXFile writes the workbook to path, creating parent directories.
func WriteXLSXFile(path string, entries []Entry, runID string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("WriteXLSXFile: failed to create output directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteXLSXFile: %w", err)
	}
	if err := WriteXLSX(out, entries, runID); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// styleRange applies style to columns fromCol..toCol of rows 2..lastRow.
func styleRange(f *excelize.File, sheet string, fromCol, toCol, lastRow int, style int) error {
	start, _ := excelize.CoordinatesToCellName(fromCol, 2)
	end, _ := excelize.CoordinatesToCellName(toCol, lastRow)
	return f.SetCellStyle(sheet, start, end, style)
}
