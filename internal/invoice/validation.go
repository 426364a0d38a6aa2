package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"

	"invoicenorm/pkg/models"
)

var (
	// amountTolerance is the largest accepted gap between base + tax and total.
	amountTolerance = decimal.RequireFromString("0.02")

	// linesTolerancePct bounds the gap between the sum of line totals and the
	// header total, in percent of the larger one.
	linesTolerancePct = decimal.NewFromInt(5)
)

// ValidationResult lists the inconsistencies found in a normalized record.
type ValidationResult struct {
	Warnings       []string
	HasDiscrepancy bool
}

// Validate cross-checks the figures of a normalized record. It never modifies
// the record; downstream consumers decide whether a warning needs review.
func (n *Normalizer) Validate(rec *models.InvoiceRecord) *ValidationResult {
	result := &ValidationResult{Warnings: []string{}}
	if rec == nil {
		return result
	}

	base, tax, total := rec.TaxableBase, rec.TaxAmount, rec.Total
	if base.Valid && tax.Valid && total.Valid {
		calculated := base.Decimal.Add(tax.Decimal)
		if diff := calculated.Sub(total.Decimal).Abs(); diff.GreaterThan(amountTolerance) {
			result.add(fmt.Sprintf("base (%s) + tax (%s) = %s, but total is %s",
				base.Decimal.StringFixed(2), tax.Decimal.StringFixed(2),
				calculated.StringFixed(2), total.Decimal.StringFixed(2)))
		}
	}

	if total.Valid && len(rec.Lines) > 0 {
		sum, complete := decimal.Zero, true
		for _, l := range rec.Lines {
			if !l.LineTotal.Valid {
				complete = false
				break
			}
			sum = sum.Add(l.LineTotal.Decimal)
		}
		if complete {
			if pct := discrepancyPct(sum, total.Decimal); pct.GreaterThan(linesTolerancePct) {
				result.add(fmt.Sprintf("line totals sum to %s, header total is %s (%s%% difference)",
					sum.StringFixed(2), total.Decimal.StringFixed(2), pct.StringFixed(1)))
			}
		}
	}

	if rec.Vendor.TaxID == nil {
		result.Warnings = append(result.Warnings, "vendor tax id not found")
	}

	if result.HasDiscrepancy {
		n.log.Warn().
			Str("invoice_number", models.Deref(rec.InvoiceNumber)).
			Strs("warnings", result.Warnings).
			Msg("Amount discrepancy detected")
	}
	return result
}

func (r *ValidationResult) add(warning string) {
	r.Warnings = append(r.Warnings, warning)
	r.HasDiscrepancy = true
}

// discrepancyPct returns |a-b| as a percentage of the larger magnitude.
func discrepancyPct(a, b decimal.Decimal) decimal.Decimal {
	larger := decimal.Max(a.Abs(), b.Abs())
	if larger.IsZero() {
		return decimal.Zero
	}
	return a.Sub(b).Abs().Div(larger).Mul(hundred)
}
