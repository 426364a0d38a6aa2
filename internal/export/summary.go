// Package export writes normalized invoices out of the pipeline: one JSON
// document per invoice, plus a one-row-per-invoice summary as CSV, XLSX or a
// Google Sheet.
package export

import (
	"strings"

	"github.com/shopspring/decimal"

	"invoicenorm/internal/batch"
	"invoicenorm/pkg/models"
)

// SummaryHeader names the summary columns in output order.
var SummaryHeader = []string{
	"file",
	"vendor",
	"vendor_tax_id",
	"invoice_number",
	"issue_date",
	"taxable_base",
	"tax_amount",
	"total",
	"currency",
	"tax_code",
	"classification",
	"status",
	"warnings",
}

// Entry is one exported document.
type Entry struct {
	Name     string
	Record   *models.InvoiceRecord
	Status   batch.Status
	Warnings []string
}

// EntriesFromReport returns one entry per document that produced a record,
// in input order. Failed documents are left out.
func EntriesFromReport(report *batch.Report) []Entry {
	ok := report.Succeeded()
	entries := make([]Entry, 0, len(ok))
	for _, res := range ok {
		entries = append(entries, Entry{
			Name:     res.Name,
			Record:   res.Record,
			Status:   res.Status,
			Warnings: res.Warnings,
		})
	}
	return entries
}

// SummaryRow is the flat view of one invoice. Amounts stay nullable so that
// each writer can render a missing figure its own way.
type SummaryRow struct {
	File           string
	Vendor         string
	VendorTaxID    string
	InvoiceNumber  string
	IssueDate      string
	TaxableBase    decimal.NullDecimal
	TaxAmount      decimal.NullDecimal
	Total          decimal.NullDecimal
	Currency       string
	TaxCode        string // Empty when lines carry different rates
	Classification string
	Status         string
	Warnings       string
}

// SummaryRow flattens the entry.
func (e Entry) SummaryRow() SummaryRow {
	row := SummaryRow{
		File:     e.Name,
		Status:   string(e.Status),
		Warnings: strings.Join(e.Warnings, "; "),
	}
	rec := e.Record
	if rec == nil {
		return row
	}

	row.Vendor = models.Deref(rec.Vendor.Name)
	row.VendorTaxID = models.Deref(rec.Vendor.TaxID)
	row.InvoiceNumber = models.Deref(rec.InvoiceNumber)
	row.IssueDate = models.Deref(rec.IssueDate)
	row.TaxableBase = rec.TaxableBase
	row.TaxAmount = rec.TaxAmount
	row.Total = rec.Total
	row.Currency = rec.Currency
	row.TaxCode = models.Deref(rec.TaxCode)
	row.Classification = models.Deref(rec.ClassificationCategory)
	return row
}

// Strings renders the row as text cells, amounts with two decimals and
// missing amounts as empty cells.
func (r SummaryRow) Strings() []string {
	return []string{
		r.File,
		r.Vendor,
		r.VendorTaxID,
		r.InvoiceNumber,
		r.IssueDate,
		amountText(r.TaxableBase),
		amountText(r.TaxAmount),
		amountText(r.Total),
		r.Currency,
		r.TaxCode,
		r.Classification,
		r.Status,
		r.Warnings,
	}
}

func amountText(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}
