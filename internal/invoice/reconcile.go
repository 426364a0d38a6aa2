package invoice

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"invoicenorm/pkg/models"
)

// ReconcileLine fills the derived fields of a line: tax_amount, a missing
// line_total and tax_code. The base is quantity x unit price when both are
// known, otherwise it is recovered from the line total and the snapped rate.
// Running it twice leaves the line unchanged.
func (t RateTable) ReconcileLine(l *models.LineItem) {
	rate := t.Snap(l.TaxRatePercent)

	var base decimal.NullDecimal
	switch {
	case l.Quantity.Valid && l.UnitPrice.Valid:
		base = valid(round2(l.Quantity.Decimal.Mul(l.UnitPrice.Decimal)))
	case l.LineTotal.Valid && rate.Valid:
		base = valid(baseFromGross(l.LineTotal.Decimal, rate.Decimal))
	}

	if rate.Valid && base.Valid {
		tax := round2(base.Decimal.Mul(rate.Decimal).Div(hundred))
		l.TaxAmount = valid(tax)
		if !l.LineTotal.Valid {
			l.LineTotal = valid(round2(base.Decimal.Add(tax)))
		}
	}
	l.TaxCode = t.Code(rate)
}

func baseFromGross(gross, rate decimal.Decimal) decimal.Decimal {
	return round2(gross.Div(one.Add(rate.Div(hundred))))
}

// reconcileTotals completes the header figures of rec once its lines are
// known, synthesizing a single line from the header when there are none.
// Values read from the document are never overwritten.
func (n *Normalizer) reconcileTotals(rec *models.InvoiceRecord, text []string) {
	completeHeader(rec)

	if !rec.TaxableBase.Valid && len(rec.Lines) > 0 {
		n.headerFromLines(rec)
	}

	if !rec.TaxableBase.Valid || !rec.TaxAmount.Valid || !rec.Total.Valid {
		n.totalsFromText(rec, text)
		completeHeader(rec)
	}

	if len(rec.Lines) == 0 && (rec.TaxableBase.Valid || rec.Total.Valid) {
		rec.Lines = append(rec.Lines, n.syntheticLine(rec))
		n.log.Debug().Msg("Synthesized line from header totals")
	}

	rec.TaxCode = headerTaxCode(rec.Lines)
}

// completeHeader applies base + tax = total to fill the one missing figure.
func completeHeader(rec *models.InvoiceRecord) {
	base, tax, total := rec.TaxableBase, rec.TaxAmount, rec.Total
	switch {
	case base.Valid && tax.Valid && !total.Valid:
		rec.Total = valid(round2(base.Decimal.Add(tax.Decimal)))
	case total.Valid && tax.Valid && !base.Valid:
		rec.TaxableBase = valid(round2(total.Decimal.Sub(tax.Decimal)))
	case total.Valid && base.Valid && !tax.Valid:
		rec.TaxAmount = valid(round2(total.Decimal.Sub(base.Decimal)))
	}
}

// headerFromLines sums the bases of lines carrying both a rate and a total.
func (n *Normalizer) headerFromLines(rec *models.InvoiceRecord) {
	var base, tax decimal.Decimal
	found := false
	for _, l := range rec.Lines {
		rate := n.rules.Rates.Snap(l.TaxRatePercent)
		if !rate.Valid || !l.LineTotal.Valid {
			continue
		}
		lb := baseFromGross(l.LineTotal.Decimal, rate.Decimal)
		base = base.Add(lb)
		tax = tax.Add(l.LineTotal.Decimal.Sub(lb))
		found = true
	}
	if !found || !base.IsPositive() {
		return
	}

	rec.TaxableBase = valid(base)
	if !rec.TaxAmount.Valid {
		rec.TaxAmount = valid(tax)
	}
	if !rec.Total.Valid {
		rec.Total = valid(round2(base.Add(rec.TaxAmount.Decimal)))
	}
	n.log.Debug().
		Str("base", base.StringFixed(2)).
		Str("tax", rec.TaxAmount.Decimal.StringFixed(2)).
		Msg("Header totals derived from lines")
}

// totalsFromText scans OCR lines for labeled subtotal, tax and total figures.
// The first labeled line with an amount wins per category. A tax line that
// only states a percentage yields a rate applied to the base.
func (n *Normalizer) totalsFromText(rec *models.InvoiceRecord, lines []string) {
	var sub, tax, total, rate decimal.NullDecimal
	for _, line := range n.totalsRegion(lines) {
		// Identifier lines ("Tax ID: ...") carry digits that are not amounts.
		if ExtractTaxID(line) != nil {
			continue
		}
		key := fold(line)
		switch {
		case matchAny(n.subtotalRe, key):
			if !sub.Valid {
				sub = ParseAmount(line)
			}
		case matchAny(n.taxRe, key):
			if m := percentToken.FindStringSubmatch(line); m != nil && !rate.Valid {
				rate = n.rules.Rates.Snap(parseNumber(m[1]))
			}
			if !tax.Valid {
				tax = ParseAmount(percentToken.ReplaceAllString(line, " "))
			}
		case matchAny(n.totalRe, key):
			if !total.Valid {
				total = ParseAmount(line)
			}
		}
	}

	if !rec.TaxableBase.Valid {
		rec.TaxableBase = sub
	}
	if !rec.TaxAmount.Valid {
		rec.TaxAmount = tax
		if !tax.Valid && rate.Valid && rec.TaxableBase.Valid {
			rec.TaxAmount = valid(round2(rec.TaxableBase.Decimal.Mul(rate.Decimal).Div(hundred)))
		}
	}
	if !rec.Total.Valid {
		rec.Total = total
	}
}

// totalsRegion returns the lines that may carry header totals. Item rows
// annotate their own rate ("... 100,00 IGI 9,5%"), so the scan starts at the
// first body stop after the item header, or after the item block when no
// stop follows it. Without either, every line is scanned.
func (n *Normalizer) totalsRegion(lines []string) []string {
	start, end := n.itemBlock(lines)
	if start < 0 {
		start = 0
		end = len(lines)
		for i, l := range lines {
			if n.isBodyStop(l) {
				end = i
				break
			}
		}
	}
	if end < len(lines) {
		return lines[end:]
	}
	if start > 0 {
		return lines[:start]
	}
	return lines
}

// syntheticLine builds the single line of a document whose items could not be
// read, from its header figures.
func (n *Normalizer) syntheticLine(rec *models.InvoiceRecord) models.LineItem {
	line := models.LineItem{
		Quantity:  valid(one),
		UnitPrice: rec.TaxableBase,
		LineTotal: rec.Total,
	}
	base, tax := rec.TaxableBase, rec.TaxAmount
	if base.Valid && tax.Valid && !base.Decimal.IsZero() {
		line.TaxRatePercent = valid(round2(tax.Decimal.Div(base.Decimal).Mul(hundred)))
	}
	n.rules.Rates.ReconcileLine(&line)
	return line
}

// headerTaxCode returns the shared code of all lines, or nil when any line
// lacks a code or the codes differ.
func headerTaxCode(lines []models.LineItem) *string {
	if len(lines) == 0 || lines[0].TaxCode == nil {
		return nil
	}
	first := *lines[0].TaxCode
	for _, l := range lines[1:] {
		if l.TaxCode == nil || *l.TaxCode != first {
			return nil
		}
	}
	return &first
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
