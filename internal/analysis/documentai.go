package analysis

import (
	"fmt"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/shopspring/decimal"
)

// documentAIFields maps Document AI invoice-parser entity types to the field
// names the normalizer reads.
var documentAIFields = map[string]string{
	"supplier_name":         "VendorName",
	"supplier_tax_id":       "VendorTaxId",
	"supplier_address":      "VendorAddress",
	"supplier_registration": "VendorAddressRecipient",
	"receiver_name":         "CustomerName",
	"receiver_tax_id":       "CustomerTaxId",
	"receiver_address":      "CustomerAddress",
	"ship_to_address":       "ShippingAddress",
	"invoice_id":            "InvoiceId",
	"invoice_date":          "InvoiceDate",
	"due_date":              "DueDate",
	"payment_terms":         "PaymentTerm",
	"currency":              "CurrencyCode",
	"net_amount":            "SubTotal",
	"total_tax_amount":      "TotalTax",
	"total_amount":          "InvoiceTotal",
}

// documentAIItemFields maps line_item properties to item field names.
var documentAIItemFields = map[string]string{
	"line_item/description":  "Description",
	"line_item/quantity":     "Quantity",
	"line_item/unit_price":   "UnitPrice",
	"line_item/amount":       "Amount",
	"line_item/tax_rate":     "TaxRate",
	"line_item/product_code": "ProductCode",
}

// FromDocumentAI converts a Document AI invoice-parser document.
func FromDocumentAI(doc *documentaipb.Document) *Result {
	res := &Result{}
	if doc == nil {
		return res
	}

	fields := map[string]Field{}
	var items []map[string]Field
	for _, entity := range doc.GetEntities() {
		if entity.GetType() == "line_item" {
			items = append(items, documentAIItem(entity))
			continue
		}
		name, ok := documentAIFields[entity.GetType()]
		if !ok {
			continue
		}
		// First mention wins, as the parser orders entities by confidence.
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = documentAIField(entity)
	}
	if len(items) > 0 {
		fields["Items"] = Field{Items: items}
	}
	if len(fields) > 0 {
		res.Documents = []Document{{Fields: fields}}
	}

	text := doc.GetText()
	for i, p := range doc.GetPages() {
		page := Page{Number: int(p.GetPageNumber())}
		if page.Number == 0 {
			page.Number = i + 1
		}
		for _, line := range p.GetLines() {
			if s := strings.TrimSpace(anchorText(text, line.GetLayout().GetTextAnchor())); s != "" {
				page.Lines = append(page.Lines, s)
			}
		}
		for _, t := range p.GetTables() {
			page.Tables = append(page.Tables, documentAITable(text, t))
		}
		for _, ff := range p.GetFormFields() {
			k := strings.TrimSpace(anchorText(text, ff.GetFieldName().GetTextAnchor()))
			v := strings.TrimSpace(anchorText(text, ff.GetFieldValue().GetTextAnchor()))
			res.KeyValuePairs = append(res.KeyValuePairs, KeyValuePair{Key: &k, Value: &v})
		}
		res.Pages = append(res.Pages, page)
	}

	if len(res.TextLines()) == 0 && strings.TrimSpace(text) != "" {
		if len(res.Pages) == 0 {
			res.Pages = append(res.Pages, Page{Number: 1})
		}
		res.Pages[0].Lines = splitLines(text)
	}

	return res
}

func documentAIItem(entity *documentaipb.Document_Entity) map[string]Field {
	item := map[string]Field{}
	for _, prop := range entity.GetProperties() {
		name, ok := documentAIItemFields[prop.GetType()]
		if !ok {
			continue
		}
		item[name] = documentAIField(prop)
	}
	return item
}

func documentAIField(entity *documentaipb.Document_Entity) Field {
	field := Field{Content: strings.TrimSpace(entity.GetMentionText())}
	nv := entity.GetNormalizedValue()
	if nv == nil {
		return field
	}
	switch {
	case nv.GetMoneyValue() != nil:
		m := nv.GetMoneyValue()
		field.Value = decimal.New(m.GetUnits(), 0).
			Add(decimal.New(int64(m.GetNanos()), -9)).
			String()
	case nv.GetDateValue() != nil:
		d := nv.GetDateValue()
		field.Value = fmt.Sprintf("%04d-%02d-%02d", d.GetYear(), d.GetMonth(), d.GetDay())
	case nv.GetFloatValue() != 0:
		field.Value = decimal.NewFromFloat32(nv.GetFloatValue()).String()
	case nv.GetIntegerValue() != 0:
		field.Value = fmt.Sprintf("%d", nv.GetIntegerValue())
	default:
		field.Value = strings.TrimSpace(nv.GetText())
	}
	return field
}

// documentAITable flattens header and body rows into cells. Column indexes
// advance by each cell's column span.
func documentAITable(text string, t *documentaipb.Document_Page_Table) Table {
	var table Table
	rows := append(append([]*documentaipb.Document_Page_Table_TableRow{}, t.GetHeaderRows()...), t.GetBodyRows()...)
	for r, row := range rows {
		col := 0
		for _, cell := range row.GetCells() {
			table.Cells = append(table.Cells, Cell{
				RowIndex:    r,
				ColumnIndex: col,
				Content:     anchorText(text, cell.GetLayout().GetTextAnchor()),
			})
			span := int(cell.GetColSpan())
			if span < 1 {
				span = 1
			}
			col += span
		}
	}
	return table
}

func anchorText(text string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}
	if anchor.GetContent() != "" {
		return anchor.GetContent()
	}
	var b strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start, end := int(seg.GetStartIndex()), int(seg.GetEndIndex())
		if start < 0 || end > len(text) || start >= end {
			continue
		}
		b.WriteString(text[start:end])
	}
	return b.String()
}
