// Package invoice turns a document-understanding result into a canonical,
// tax-consistent invoice record.
//
// The normalizer reconciles three independently unreliable sources: the
// structured fields of the analyzer, the OCR table grids and the raw OCR
// text. Line items are read from the first source that yields any, in that
// order, and missing tax figures are repaired with the Andorran IGI rate
// table:
//
//   - each line gets tax_amount, a missing line_total and a tax code derived
//     from its rate snapped to the nearest legal value
//   - header base, tax and total are completed from each other, from the
//     lines, or from labeled totals in the OCR text
//   - a document with header totals but no readable lines gets one synthetic
//     line carrying those totals
//
// Normalization never fails. Unreadable values are left null and absent
// sources fall through to the next one. The raw extraction is mirrored onto
// the record for audit.
package invoice

import (
	"regexp"

	"github.com/rs/zerolog"

	"invoicenorm/internal/analysis"
	"invoicenorm/internal/logger"
	"invoicenorm/pkg/models"
)

// Normalizer converts analysis results into invoice records. It holds no
// mutable state and is safe for concurrent use.
type Normalizer struct {
	rules Rules

	// Keyword tables folded for accent-insensitive lookup.
	columns   columnAliases
	header    HeaderTokens
	bodyStops []string

	subtotalRe []*regexp.Regexp
	taxRe      []*regexp.Regexp
	totalRe    []*regexp.Regexp

	// Line strategies per document state.
	structured []lineStrategy
	textOnly   []lineStrategy

	log zerolog.Logger
}

// New builds a Normalizer from rules, compiling the totals keywords.
func New(rules Rules) (*Normalizer, error) {
	const op = "New"

	if len(rules.Rates) == 0 {
		return nil, WrapRulesError(op, ErrInvalidRules, "rate table is empty")
	}
	if rules.DefaultCurrency == "" {
		rules.DefaultCurrency = models.DefaultCurrency
	}

	n := &Normalizer{
		rules:     rules,
		columns:   rules.Columns.folded(),
		header:    rules.Header.folded(),
		bodyStops: foldAll(rules.BodyStops),
		log:       logger.WithComponent("normalizer"),
	}

	var err error
	if n.subtotalRe, err = compileKeywords(rules.Totals.Subtotal); err != nil {
		return nil, WrapRulesError(op, err, "subtotal keywords")
	}
	if n.taxRe, err = compileKeywords(rules.Totals.Tax); err != nil {
		return nil, WrapRulesError(op, err, "tax keywords")
	}
	if n.totalRe, err = compileKeywords(rules.Totals.Total); err != nil {
		return nil, WrapRulesError(op, err, "total keywords")
	}

	n.structured = []lineStrategy{
		{name: "items", extract: n.linesFromItems},
		{name: "tables", extract: n.linesFromTables},
		{name: "text", extract: n.linesFromText},
	}
	n.textOnly = []lineStrategy{
		{name: "tables", extract: n.linesFromTables},
		{name: "text", extract: n.linesFromText},
	}
	return n, nil
}

// MustNew is like New but panics on invalid rules.
func MustNew(rules Rules) *Normalizer {
	n, err := New(rules)
	if err != nil {
		panic(err)
	}
	return n
}

// Rules returns the rules the normalizer was built with.
func (n *Normalizer) Rules() Rules {
	return n.rules
}

func compileKeywords(keywords []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(keywords))
	for _, k := range keywords {
		re, err := regexp.Compile("(?i)" + k)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	return res, nil
}

// Normalize builds the invoice record of one analyzed document. A nil result
// yields an empty record.
func (n *Normalizer) Normalize(res *analysis.Result) *models.InvoiceRecord {
	if res == nil {
		res = &analysis.Result{}
	}

	rec := models.NewInvoiceRecord()
	rec.Currency = n.rules.DefaultCurrency
	mirror(rec, res)
	text := composeLines(res.TextLines())

	strategies := n.textOnly
	doc, structured := res.StructuredDocument()
	if structured {
		n.fieldsFromDocument(rec, doc)
		strategies = n.structured
	} else {
		n.fieldsFromText(rec, text)
	}

	lines, source := firstLines(res, strategies)
	rec.Lines = append(rec.Lines, lines...)
	n.log.Debug().
		Bool("structured", structured).
		Str("source", source).
		Int("lines", len(lines)).
		Msg("Line items reconstructed")

	n.reconcileTotals(rec, text)

	if rec.ClassificationCategory == nil {
		pending := models.PendingReview
		rec.ClassificationCategory = &pending
	}
	return rec
}

// fieldsFromDocument copies the named structured fields onto the record.
func (n *Normalizer) fieldsFromDocument(rec *models.InvoiceRecord, doc analysis.Document) {
	text := func(name string) string { return doc.Fields[name].Text() }

	rec.Vendor = models.Party{
		Name:      cleanText(text("VendorName")),
		TaxID:     taxIDFromField(text("VendorTaxId")),
		Address:   cleanText(text("VendorAddress")),
		LegalName: cleanText(text("VendorAddressRecipient")),
	}
	rec.Customer = models.Party{
		Name:      cleanText(text("CustomerName")),
		TaxID:     taxIDFromField(text("CustomerTaxId")),
		Address:   cleanText(text("CustomerAddress")),
		LegalName: cleanText(text("CustomerAddressRecipient")),
	}

	rec.InvoiceNumber = cleanText(text("InvoiceId"))
	rec.IssueDate = cleanText(text("InvoiceDate"))
	rec.DueDate = cleanText(text("DueDate"))
	rec.PaymentTerm = cleanText(text("PaymentTerm"))
	rec.ShippingAddress = cleanText(text("ShippingAddress"))
	rec.Currency = NormalizeCurrency(text("CurrencyCode"), n.rules.DefaultCurrency)

	rec.TaxableBase = fieldAmount(doc.Fields["SubTotal"])
	rec.TaxAmount = fieldAmount(doc.Fields["TotalTax"])
	rec.Total = fieldAmount(doc.Fields["InvoiceTotal"])
}

func taxIDFromField(s string) *string {
	if cleanText(s) == nil {
		return nil
	}
	return resolveTaxID(s)
}

// mirror copies the raw extraction onto the record without interpreting it.
func mirror(rec *models.InvoiceRecord, res *analysis.Result) {
	if doc, ok := res.StructuredDocument(); ok {
		for name, f := range doc.Fields {
			rec.Raw.Fields[name] = models.StringPtr(f.Text())
		}
		for _, item := range doc.Fields["Items"].Items {
			raw := make(map[string]*string, len(item))
			for name, f := range item {
				raw[name] = models.StringPtr(f.Text())
			}
			rec.Raw.Items = append(rec.Raw.Items, raw)
		}
	}

	for _, kv := range res.KeyValuePairs {
		rec.Raw.KeyValuePairs = append(rec.Raw.KeyValuePairs, models.KeyValue{
			Key:   copyString(kv.Key),
			Value: copyString(kv.Value),
		})
	}
	rec.Raw.Tables = append(rec.Raw.Tables, res.Tables()...)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
