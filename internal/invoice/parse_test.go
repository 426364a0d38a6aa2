package invoice_test

import (
	"fmt"
	"testing"

	"invoicenorm/internal/invoice"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.234,56 €", "1234.56"},
		{"$1,234.56", "1234.56"},
		{"IVA 21% (-504,00€)", "-504.00"},
		{"12,5", "12.5"},
		{"1,234", "1234"},
		{"1.234.567", "1234567"},
		{"10.50", "10.50"},
		{"Total: 82,13 EUR", "82.13"},
		{"-3", "-3"},
		{"Total", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assertDecimal(t, "ParseAmount", invoice.ParseAmount(tt.in), tt.want)
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9,5 %", "9.5"},
		{"IGI 4.5%", "4.5"},
		{"9.5 % sobre 100,00", "9.5"},
		{"21", "21"},
		{" 2,5 ", "2.5"},
		{"exempt", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assertDecimal(t, "ParsePercent", invoice.ParsePercent(tt.in), tt.want)
		})
	}
}

func TestParseQuantityAndUnitPrice(t *testing.T) {
	tests := []struct {
		in        string
		wantQty   string
		wantPrice string
	}{
		{"-300 x 8,00 €", "-300", "8.00"},
		{"2×15.50", "2", "15.50"},
		{"3 X 1.200,00", "3", "1200.00"},
		{"3", "3", ""},
		{"1,5 h", "1.5", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			qty, price := invoice.ParseQuantityAndUnitPrice(tt.in)
			assertDecimal(t, "quantity", qty, tt.wantQty)
			assertDecimal(t, "unit price", price, tt.wantPrice)
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct{ in, want string }{
		{"€", "EUR"},
		{" usd ", "USD"},
		{"Euros", "EUR"},
		{"£", "GBP"},
		{"jpy", "JPY"},
		{"12", "EUR"},
		{"", "EUR"},
		{"dólares", "EUR"},
	}

	for _, tt := range tests {
		if got := invoice.NormalizeCurrency(tt.in, "EUR"); got != tt.want {
			t.Errorf("NormalizeCurrency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ExampleParseAmount shows that the last number of a mixed label wins.
func ExampleParseAmount() {
	fmt.Println(invoice.ParseAmount("IVA 21% (-504,00€)").Decimal.StringFixed(2))
	fmt.Println(invoice.ParseAmount("1.234,56 €").Decimal.StringFixed(2))
	fmt.Println(invoice.ParseAmount("n/a").Valid)
	// Output:
	// -504.00
	// 1234.56
	// false
}

func ExampleParseQuantityAndUnitPrice() {
	qty, price := invoice.ParseQuantityAndUnitPrice("-300 x 8,00 €")
	fmt.Println(qty.Decimal, price.Decimal.StringFixed(2))
	// Output: -300 8.00
}
