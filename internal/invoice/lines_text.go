package invoice

import (
	"regexp"
	"strings"

	"invoicenorm/internal/analysis"
	"invoicenorm/pkg/models"
)

// textRow matches one flattened line-item row:
//
//	<qty or qty x price> <description> [<unit price>] <amount> [<rate> %]
var textRow = regexp.MustCompile(`(?i)^\s*(?P<qty>-?\d+(?:[.,]\d+)?(?:\s*[x×]\s*-?\d[\d.,]*\s*€?)?)\s+(?P<desc>.+?)\s+(?:(?P<price>-?\d[\d.,]*)\s*€?\s+)?(?P<amount>-?\d[\d.,]*)\s*€?(?:\s+(?:igi|iva|vat)?\s*(?P<rate>\d+(?:[.,]\d+)?)\s*%)?\s*$`)

var (
	textRowQty    = textRow.SubexpIndex("qty")
	textRowDesc   = textRow.SubexpIndex("desc")
	textRowPrice  = textRow.SubexpIndex("price")
	textRowAmount = textRow.SubexpIndex("amount")
	textRowRate   = textRow.SubexpIndex("rate")

	strayMultiplier = regexp.MustCompile(`^[xX×]\s+`)
)

// headerAnchor returns the index of the last line of the first window of up
// to three consecutive lines that mentions a quantity, a description and a
// price. It returns -1 when no window qualifies.
func (h HeaderTokens) headerAnchor(lines []string) int {
	for i := range lines {
		window := fold(strings.Join(lines[max(0, i-2):i+1], " "))
		if containsAny(window, h.Quantity) &&
			containsAny(window, h.Description) &&
			containsAny(window, h.Price) {
			return i
		}
	}
	return -1
}

// itemBlock returns the line range [start, end) of the flattened line-item
// rows: after the header anchor up to the first body stop. start is -1 when
// the text has no header.
func (n *Normalizer) itemBlock(lines []string) (start, end int) {
	anchor := n.header.headerAnchor(lines)
	if anchor < 0 {
		return -1, -1
	}
	start, end = anchor+1, len(lines)
	for i := start; i < len(lines); i++ {
		if n.isBodyStop(lines[i]) {
			return start, i
		}
	}
	return start, end
}

func (n *Normalizer) isBodyStop(line string) bool {
	l := fold(line)
	for _, stop := range n.bodyStops {
		if strings.HasPrefix(l, stop) {
			return true
		}
	}
	return false
}

// linesFromText parses rows between a table header and the totals block of
// the OCR text. Rows that do not match the row pattern are dropped.
func (n *Normalizer) linesFromText(res *analysis.Result) []models.LineItem {
	text := composeLines(res.TextLines())
	start, end := n.itemBlock(text)
	if start < 0 {
		return nil
	}

	var lines []models.LineItem
	for _, raw := range text[start:end] {
		m := textRow.FindStringSubmatch(raw)
		if m == nil {
			continue
		}

		qty, embeddedPrice := ParseQuantityAndUnitPrice(m[textRowQty])
		price := ParseAmount(m[textRowPrice])
		if !price.Valid {
			price = embeddedPrice
		}
		desc := strayMultiplier.ReplaceAllString(strings.TrimSpace(m[textRowDesc]), "")

		line := models.LineItem{
			Description:    cleanText(desc),
			Quantity:       qty,
			UnitPrice:      price,
			TaxRatePercent: ParsePercent(m[textRowRate]),
			LineTotal:      ParseAmount(m[textRowAmount]),
		}
		if line.IsEmpty() {
			continue
		}
		n.rules.Rates.ReconcileLine(&line)
		lines = append(lines, line)
	}
	return lines
}
