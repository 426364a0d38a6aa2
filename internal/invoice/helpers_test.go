package invoice_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"invoicenorm/internal/invoice"
	"invoicenorm/pkg/models"
)

// assertDecimal fails when got differs from want; an empty want means null.
func assertDecimal(t *testing.T, name string, got decimal.NullDecimal, want string) {
	t.Helper()
	if want == "" {
		if got.Valid {
			t.Errorf("%s = %s, want null", name, got.Decimal)
		}
		return
	}
	if !got.Valid {
		t.Errorf("%s = null, want %s", name, want)
		return
	}
	if !got.Decimal.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got.Decimal, want)
	}
}

// assertString fails when got differs from want; an empty want means nil.
func assertString(t *testing.T, name string, got *string, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Errorf("%s = %q, want nil", name, *got)
		}
		return
	}
	if got == nil {
		t.Errorf("%s = nil, want %q", name, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %q, want %q", name, *got, want)
	}
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func newNormalizer(t *testing.T) *invoice.Normalizer {
	t.Helper()
	n, err := invoice.New(invoice.DefaultRules())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return n
}

func lineAt(t *testing.T, rec *models.InvoiceRecord, i int) models.LineItem {
	t.Helper()
	if i >= len(rec.Lines) {
		t.Fatalf("record has %d lines, want index %d", len(rec.Lines), i)
	}
	return rec.Lines[i]
}
