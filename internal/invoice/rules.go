package invoice

import "invoicenorm/pkg/models"

// ColumnAliases lists, per line field, the header spellings that identify a
// table column. Spanish, Catalan, English and French are covered. Case and
// accents are ignored when matching.
type ColumnAliases struct {
	Description []string
	Quantity    []string
	UnitPrice   []string
	TaxRate     []string
	Amount      []string
}

// HeaderTokens are substrings whose joint presence in a few consecutive text
// lines marks the header of a flattened line-item table.
type HeaderTokens struct {
	Quantity    []string
	Description []string
	Price       []string
}

func (h HeaderTokens) folded() HeaderTokens {
	return HeaderTokens{
		Quantity:    foldAll(h.Quantity),
		Description: foldAll(h.Description),
		Price:       foldAll(h.Price),
	}
}

// TotalsKeywords label subtotal, tax and total lines in free text. Entries
// are regular expressions matched case-insensitively.
type TotalsKeywords struct {
	Subtotal []string
	Tax      []string
	Total    []string
}

// Rules is the read-only configuration of a Normalizer. It is never mutated
// after construction and may be shared between goroutines.
type Rules struct {
	Rates           RateTable
	Columns         ColumnAliases
	Header          HeaderTokens
	BodyStops       []string // line prefixes ending a text line-item block
	Totals          TotalsKeywords
	DefaultCurrency string
}

// DefaultRules returns the rules used for Andorran and Spanish invoices.
func DefaultRules() Rules {
	return Rules{
		Rates: DefaultRateTable(),
		Columns: ColumnAliases{
			Description: []string{
				"descripción", "descripció", "description", "concepto", "concepte",
				"artículo", "article", "désignation", "libellé", "producto",
				"detalle", "item",
			},
			Quantity: []string{
				"cantidad", "quantitat", "quantity", "quantité", "qty", "qté",
				"cant.", "cant", "uds.", "uds", "unidades", "unitats",
			},
			UnitPrice: []string{
				"precio unitario", "preu unitari", "unit price", "prix unitaire",
				"precio", "preu", "price", "prix", "p.u.", "pvp",
			},
			TaxRate: []string{
				"% igi", "igi %", "% iva", "iva %", "tipo igi", "tipo iva",
				"igi", "iva", "vat", "tva", "tax", "impuesto", "impost",
			},
			Amount: []string{
				"importe", "import", "amount", "montant", "total", "subtotal",
			},
		},
		Header: HeaderTokens{
			Quantity:    []string{"cant", "quant", "qty", "qté", "uds", "unid"},
			Description: []string{"descrip", "concept", "artícul", "article", "désignation", "producto", "detalle", "item"},
			Price:       []string{"precio", "preu", "price", "prix", "importe", "import", "amount", "montant", "total"},
		},
		BodyStops: []string{"subtotal", "sub-total", "base imponible", "base imposable", "total"},
		Totals: TotalsKeywords{
			Subtotal: []string{`\bsub-?\s?total\b`, `\bbase\s+impo(?:nible|sable)\b`, `\bnet\s+amount\b`},
			Tax:      []string{`\bigi\b`, `\biva\b`, `\bvat\b`, `\btva\b`, `\bimpuestos?\b`, `\btax\b`},
			Total:    []string{`\btotal\b`, `\bimporte\s+total\b`, `\bamount\s+due\b`},
		},
		DefaultCurrency: models.DefaultCurrency,
	}
}
