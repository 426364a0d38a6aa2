package invoice

import (
	"regexp"
	"strings"

	"invoicenorm/pkg/models"
)

// Header patterns for OCR-only documents, in priority order per field.
var (
	vendorLabel = regexp.MustCompile(`(?i)^\s*(?:proveedor|proveïdor|emisor|vendor|supplier|from|de)\s*:\s*(.+)$`)

	taxIDLabel = regexp.MustCompile(`(?i)\b(?:nrt|nif|cif|nie|n\.?i\.?f\.?|tax\s*id|vat\s*(?:no|number|id))\b`)

	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:n[º°o]\.?|núm(?:ero)?\.?|number|no\.?)\s*(?:de\s+)?(?:factura|invoice)\s*[:#]?\s*([A-Z0-9][A-Z0-9/\-.]*\d[A-Z0-9/\-]*)`),
		regexp.MustCompile(`(?i)\b(?:factura|invoice|fra\.?)\s*(?:n[º°o]\.?|núm(?:ero)?\.?|number|no\.?|#)?\s*[:#]?\s*([A-Z0-9][A-Z0-9/\-.]*\d[A-Z0-9/\-]*)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:fecha|data|date)\b[^0-9]{0,20}(\d{4}-\d{2}-\d{2}|\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`),
		regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
		regexp.MustCompile(`\b(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})\b`),
	}

	currencyPatterns = []struct {
		re   *regexp.Regexp
		code string
	}{
		{regexp.MustCompile(`€|\bEUR\b|(?i:\beuros?\b)`), "EUR"},
		{regexp.MustCompile(`\$|\bUSD\b`), "USD"},
		{regexp.MustCompile(`£|\bGBP\b`), "GBP"},
		{regexp.MustCompile(`\bCHF\b`), "CHF"},
	}

	billToLabel = regexp.MustCompile(`(?i)^\s*(?:facturar\s+a|factura\s+a|bill(?:ed)?\s+to|cliente|client|customer|destinatario|destinatari)\b\s*:?\s*(.*)$`)
	shipToLabel = regexp.MustCompile(`(?i)^\s*(?:ship\s+to|enviar\s+a|direcci[oó]n\s+de\s+env[ií]o|adreça\s+d'enviament|entrega|lliurament|livraison)\b\s*:?\s*(.*)$`)

	// blockStop ends a labeled block when it appears at the start of a line.
	blockStop = regexp.MustCompile(`(?i)^\s*(?:ship\s+to|bill(?:ed)?\s+to|facturar\s+a|enviar\s+a|direcci[oó]n\s+de\s+env[ií]o|entrega|factura|invoice|fecha|data|date|nif|nrt|cif|nie|tax|cant|qty|quant|descrip|concept|subtotal|base\s+impo|total|forma\s+de\s+pago|payment)`)
)

// maxBlockLines bounds a bill-to or ship-to block.
const maxBlockLines = 4

// block is a labeled run of lines: the text after the label plus the
// following lines until a stop keyword.
type block struct {
	start, end int // line range [start, end) including the label line
	lines      []string
}

func findBlock(lines []string, label *regexp.Regexp) (block, bool) {
	for i, l := range lines {
		m := label.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		b := block{start: i, end: i + 1}
		if rest := strings.TrimSpace(m[1]); rest != "" {
			b.lines = append(b.lines, rest)
		}
		for j := i + 1; j < len(lines) && len(b.lines) < maxBlockLines; j++ {
			if blockStop.MatchString(lines[j]) || strings.TrimSpace(lines[j]) == "" {
				break
			}
			b.lines = append(b.lines, strings.TrimSpace(lines[j]))
			b.end = j + 1
		}
		return b, len(b.lines) > 0
	}
	return block{}, false
}

func (b block) contains(i int) bool {
	return i >= b.start && i < b.end
}

// fieldsFromText fills vendor, customer and header fields of an OCR-only
// document by pattern search over its text lines.
func (n *Normalizer) fieldsFromText(rec *models.InvoiceRecord, lines []string) {
	text := strings.Join(lines, "\n")

	billTo, hasBillTo := findBlock(lines, billToLabel)
	if hasBillTo {
		rec.Customer.Name = cleanText(billTo.lines[0])
		if len(billTo.lines) > 1 {
			rec.Customer.Address = cleanText(strings.Join(billTo.lines[1:], ", "))
		}
		rec.Customer.TaxID = ExtractTaxID(strings.Join(billTo.lines, "\n"))
	}
	if shipTo, ok := findBlock(lines, shipToLabel); ok {
		rec.ShippingAddress = cleanText(strings.Join(shipTo.lines, ", "))
	}

	// Vendor lines are those outside the bill-to block.
	var vendorLines []string
	for i, l := range lines {
		if hasBillTo && billTo.contains(i) {
			continue
		}
		vendorLines = append(vendorLines, l)
	}

	rec.Vendor.Name = vendorNameFromText(vendorLines)
	rec.Vendor.TaxID = vendorTaxIDFromText(vendorLines)
	rec.InvoiceNumber = firstSubmatch(invoiceNumberPatterns, text)
	rec.IssueDate = firstSubmatch(datePatterns, text)
	rec.Currency = currencyFromText(text, n.rules.DefaultCurrency)
}

// vendorNameFromText takes an explicit "Vendor:" label, else the first line
// that carries letters and is not a recognizable header label.
func vendorNameFromText(lines []string) *string {
	for _, l := range lines {
		if m := vendorLabel.FindStringSubmatch(l); m != nil {
			return cleanText(m[1])
		}
	}
	for _, l := range lines {
		if !hasLetter(l) || blockStop.MatchString(l) || taxIDLabel.MatchString(l) {
			continue
		}
		if ExtractTaxID(l) != nil || shipToLabel.MatchString(l) {
			continue
		}
		return cleanText(l)
	}
	return nil
}

// vendorTaxIDFromText prefers identifiers on labeled lines.
func vendorTaxIDFromText(lines []string) *string {
	for _, l := range lines {
		if !taxIDLabel.MatchString(l) {
			continue
		}
		if id := ExtractTaxID(l); id != nil {
			return id
		}
	}
	return ExtractTaxID(strings.Join(lines, "\n"))
}

func currencyFromText(text, def string) string {
	for _, c := range currencyPatterns {
		if c.re.MatchString(text) {
			return c.code
		}
	}
	return def
}

func firstSubmatch(patterns []*regexp.Regexp, text string) *string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanText(m[1])
		}
	}
	return nil
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f {
			return true
		}
	}
	return false
}
