package models

import "github.com/shopspring/decimal"

// DefaultCurrency is used when neither the structured fields nor the OCR text
// name a currency.
const DefaultCurrency = "EUR"

// PendingReview is the classification placeholder for records nobody has
// categorized yet.
const PendingReview = "Pending review"

// Party describes the vendor or the customer of an invoice.
type Party struct {
	Name      *string `json:"name" jsonschema:"oneof_type=string;null"`       // Trading name
	TaxID     *string `json:"tax_id" jsonschema:"oneof_type=string;null"`     // Canonical NRT/NIF/NIE/CIF
	Address   *string `json:"address" jsonschema:"oneof_type=string;null"`    // Single-line postal address
	LegalName *string `json:"legal_name" jsonschema:"oneof_type=string;null"` // Registered name ("address recipient")
}

// LineItem is one invoice row. Every field is independently nullable.
type LineItem struct {
	Description    *string             `json:"description" jsonschema:"oneof_type=string;null"`
	Quantity       decimal.NullDecimal `json:"quantity"`
	UnitPrice      decimal.NullDecimal `json:"unit_price"`
	TaxRatePercent decimal.NullDecimal `json:"tax_rate_percent"` // As observed, before snapping
	TaxAmount      decimal.NullDecimal `json:"tax_amount"`       // Derived
	LineTotal      decimal.NullDecimal `json:"line_total"`       // Tax included

	// TaxCode is derived from the snapped rate.
	TaxCode         *string `json:"tax_code" jsonschema:"oneof_type=string;null"`
	CostAccountCode *string `json:"cost_account_code" jsonschema:"oneof_type=string;null"`
}

// IsEmpty reports whether none of the core fields carry a value.
func (l LineItem) IsEmpty() bool {
	return l.Description == nil && !l.Quantity.Valid && !l.UnitPrice.Valid && !l.LineTotal.Valid
}

// KeyValue is a raw key/value pair as returned by the document service.
type KeyValue struct {
	Key   *string `json:"key" jsonschema:"oneof_type=string;null"`
	Value *string `json:"value" jsonschema:"oneof_type=string;null"`
}

// RawMirror is a verbatim copy of the extraction output kept for audit.
type RawMirror struct {
	Fields        map[string]*string   `json:"fields"`
	Items         []map[string]*string `json:"items"`
	KeyValuePairs []KeyValue           `json:"key_value_pairs"`
	Tables        [][][]string         `json:"tables"`
}

// InvoiceRecord is the canonical invoice produced from one analyzed document.
type InvoiceRecord struct {
	Vendor   Party `json:"vendor"`
	Customer Party `json:"customer"`

	InvoiceNumber   *string `json:"invoice_number" jsonschema:"oneof_type=string;null"`
	IssueDate       *string `json:"issue_date" jsonschema:"oneof_type=string;null"`
	DueDate         *string `json:"due_date" jsonschema:"oneof_type=string;null"`
	PaymentTerm     *string `json:"payment_term" jsonschema:"oneof_type=string;null"`
	Currency        string  `json:"currency" jsonschema_description:"ISO 4217 code"`
	ShippingAddress *string `json:"shipping_address" jsonschema:"oneof_type=string;null"`

	// Totals (taxable base + tax = total)
	TaxableBase decimal.NullDecimal `json:"taxable_base"`
	TaxAmount   decimal.NullDecimal `json:"tax_amount"`
	Total       decimal.NullDecimal `json:"total"`

	Lines                  []LineItem `json:"lines"`
	TaxCode                *string    `json:"tax_code" jsonschema:"oneof_type=string;null" jsonschema_description:"Set only when all lines share one rate"`
	ClassificationCategory *string    `json:"classification_category" jsonschema:"oneof_type=string;null"`

	Raw RawMirror `json:"raw"`
}

// NewInvoiceRecord returns an empty record with its collections allocated.
func NewInvoiceRecord() *InvoiceRecord {
	return &InvoiceRecord{
		Currency: DefaultCurrency,
		Lines:    []LineItem{},
		Raw: RawMirror{
			Fields:        map[string]*string{},
			Items:         []map[string]*string{},
			KeyValuePairs: []KeyValue{},
			Tables:        [][][]string{},
		},
	}
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
