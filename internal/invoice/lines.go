package invoice

import (
	"strings"

	"github.com/shopspring/decimal"

	"invoicenorm/internal/analysis"
	"invoicenorm/pkg/models"
)

// lineStrategy reconstructs line items from one kind of source. Strategies are
// tried in order and the first non-empty result is kept.
type lineStrategy struct {
	name    string
	extract func(res *analysis.Result) []models.LineItem
}

// firstLines runs the strategies in order and returns the first non-empty
// result together with the name of the strategy that produced it.
func firstLines(res *analysis.Result, strategies []lineStrategy) ([]models.LineItem, string) {
	for _, s := range strategies {
		if lines := s.extract(res); len(lines) > 0 {
			return lines, s.name
		}
	}
	return nil, ""
}

// linesFromItems reads the structured Items list of the first document.
func (n *Normalizer) linesFromItems(res *analysis.Result) []models.LineItem {
	doc, ok := res.StructuredDocument()
	if !ok {
		return nil
	}

	var lines []models.LineItem
	for _, item := range doc.Fields["Items"].Items {
		amount := item["Amount"]
		if !amount.HasText() {
			amount = item["AmountDue"]
		}
		line := models.LineItem{
			Description:    cleanText(item["Description"].Text()),
			Quantity:       fieldAmount(item["Quantity"]),
			UnitPrice:      fieldAmount(item["UnitPrice"]),
			TaxRatePercent: fieldPercent(item["TaxRate"]),
			LineTotal:      fieldAmount(amount),
		}
		if line.IsEmpty() {
			continue
		}
		n.rules.Rates.ReconcileLine(&line)
		lines = append(lines, line)
	}
	return lines
}

// fieldAmount prefers the service's typed value and falls back to reading the
// text as a locale-formatted amount.
func fieldAmount(f analysis.Field) decimal.NullDecimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(f.Value)); err == nil {
		return decimal.NewNullDecimal(d)
	}
	return ParseAmount(f.Text())
}

func fieldPercent(f analysis.Field) decimal.NullDecimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(f.Value)); err == nil {
		return decimal.NewNullDecimal(d)
	}
	return ParsePercent(f.Text())
}
