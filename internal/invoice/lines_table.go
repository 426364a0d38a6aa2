package invoice

import (
	"strings"

	"invoicenorm/internal/analysis"
	"invoicenorm/pkg/models"
)

type lineField int

const (
	fieldDescription lineField = iota
	fieldQuantity
	fieldUnitPrice
	fieldTaxRate
	fieldLineTotal
	numLineFields
)

// columnMap holds, per line field, the index of the column that carries it,
// or -1 when no header cell names it.
type columnMap [numLineFields]int

// columnAliases holds the folded aliases of each line field.
type columnAliases [numLineFields][]string

func (a ColumnAliases) folded() columnAliases {
	return columnAliases{
		fieldDescription: foldAll(a.Description),
		fieldQuantity:    foldAll(a.Quantity),
		fieldUnitPrice:   foldAll(a.UnitPrice),
		fieldTaxRate:     foldAll(a.TaxRate),
		fieldLineTotal:   foldAll(a.Amount),
	}
}

// mapColumns matches header cells against the aliases in two passes: exact
// matches first, then header cells containing an alias. Fields claim columns in
// declaration order and a column is claimed at most once.
func (a columnAliases) mapColumns(header []string) columnMap {
	var cols columnMap
	for f := range cols {
		cols[f] = -1
	}

	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = fold(h)
	}

	claimed := make(map[int]bool, len(header))
	for _, exact := range []bool{true, false} {
		for f := range cols {
			if cols[f] >= 0 {
				continue
			}
			for i, h := range normalized {
				if claimed[i] || h == "" || !matchesAlias(h, a[f], exact) {
					continue
				}
				cols[f] = i
				claimed[i] = true
				break
			}
		}
	}
	return cols
}

func matchesAlias(header string, aliases []string, exact bool) bool {
	for _, alias := range aliases {
		if exact && header == alias {
			return true
		}
		if !exact && strings.Contains(header, alias) {
			return true
		}
	}
	return false
}

// linesFromTables reads every table grid in page order. Row 0 of each grid is
// its header.
func (n *Normalizer) linesFromTables(res *analysis.Result) []models.LineItem {
	var lines []models.LineItem
	for _, grid := range res.Tables() {
		lines = append(lines, n.linesFromGrid(grid)...)
	}
	return lines
}

func (n *Normalizer) linesFromGrid(grid [][]string) []models.LineItem {
	if len(grid) < 2 {
		return nil
	}
	cols := n.columns.mapColumns(grid[0])

	var lines []models.LineItem
	for _, row := range grid[1:] {
		cell := func(f lineField) string {
			i := cols[f]
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		blank := true
		for f := lineField(0); f < numLineFields; f++ {
			if cell(f) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		qty, embeddedPrice := ParseQuantityAndUnitPrice(cell(fieldQuantity))
		price := ParseAmount(cell(fieldUnitPrice))
		if !price.Valid {
			price = embeddedPrice
		}

		line := models.LineItem{
			Description:    cleanText(cell(fieldDescription)),
			Quantity:       qty,
			UnitPrice:      price,
			TaxRatePercent: ParsePercent(cell(fieldTaxRate)),
			LineTotal:      ParseAmount(cell(fieldLineTotal)),
		}
		if line.IsEmpty() {
			continue
		}
		n.rules.Rates.ReconcileLine(&line)
		lines = append(lines, line)
	}
	return lines
}
