package invoice_test

import (
	"fmt"

	"invoicenorm/internal/analysis"
	"invoicenorm/internal/invoice"
	"invoicenorm/pkg/models"
)

func ExampleNormalizer_Normalize() {
	n := invoice.MustNew(invoice.DefaultRules())

	// An OCR-only receipt: no structured fields, no table.
	res := &analysis.Result{Pages: []analysis.Page{{
		Number: 1,
		Lines: []string{
			"FEDA Energia",
			"NRT: L-701234-Z",
			"Base imponible 100,00",
			"IGI 9,5% 9,50",
			"Total 109,50 €",
		},
	}}}

	rec := n.Normalize(res)
	fmt.Println(models.Deref(rec.Vendor.Name), models.Deref(rec.Vendor.TaxID))
	fmt.Println(rec.TaxableBase.Decimal.StringFixed(2), rec.TaxAmount.Decimal.StringFixed(2), rec.Total.Decimal.StringFixed(2))
	fmt.Println(len(rec.Lines), models.Deref(rec.TaxCode))
	// Output:
	// FEDA Energia L-701234-Z
	// 100.00 9.50 109.50
	// 1 IGI_9_5
}

func ExampleNormalizer_Validate() {
	n := invoice.MustNew(invoice.DefaultRules())

	rec := models.NewInvoiceRecord()
	rec.Vendor.TaxID = models.StringPtr("L-701234-Z")
	rec.TaxableBase = dec("100")
	rec.TaxAmount = dec("9.50")
	rec.Total = dec("120")

	result := n.Validate(rec)
	fmt.Println(result.HasDiscrepancy)
	fmt.Println(result.Warnings[0])
	// Output:
	// true
	// base (100.00) + tax (9.50) = 109.50, but total is 120.00
}
