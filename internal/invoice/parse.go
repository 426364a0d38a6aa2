package invoice

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	numberToken    = regexp.MustCompile(`-?\d[\d.,]*\d|-?\d`)
	bareNumber     = regexp.MustCompile(`^-?\d[\d.,]*$`)
	percentToken   = regexp.MustCompile(`(-?\d+(?:[.,]\d+)?)\s*%`)
	compositeToken = regexp.MustCompile(`^\s*(-?\d[\d.,]*)\s*[xX×]\s*(-?\d[\d.,]*.*)$`)
)

// ParseAmount reads a money amount from free text such as "1.234,56 €",
// "$1,234.56" or "IVA 21% (-504,00€)". When several numbers are present the
// last one wins, since leading numbers in label cells are usually rates.
// It returns an invalid NullDecimal when no number is found.
func ParseAmount(text string) decimal.NullDecimal {
	tokens := numberToken.FindAllString(text, -1)
	if len(tokens) == 0 {
		return decimal.NullDecimal{}
	}
	return parseNumber(tokens[len(tokens)-1])
}

// ParsePercent returns the number immediately preceding a "%" sign. Without
// a "%" the whole text must be a bare number.
func ParsePercent(text string) decimal.NullDecimal {
	if m := percentToken.FindStringSubmatch(text); m != nil {
		return parseNumber(m[1])
	}
	t := strings.TrimSpace(text)
	if !bareNumber.MatchString(t) {
		return decimal.NullDecimal{}
	}
	return parseNumber(t)
}

// ParseQuantityAndUnitPrice splits composite "<qty> x <price>" cells such as
// "-300 x 8,00 €". Without a multiplication marker the whole cell is the
// quantity and the unit price is unknown.
func ParseQuantityAndUnitPrice(cell string) (qty, unitPrice decimal.NullDecimal) {
	if m := compositeToken.FindStringSubmatch(cell); m != nil {
		return parseNumber(m[1]), ParseAmount(m[2])
	}
	return ParseAmount(cell), decimal.NullDecimal{}
}

// parseNumber converts one numeric token written with either separator
// convention. With both separators present the rightmost one is the decimal
// mark. A repeated separator, or a single comma followed by exactly three
// digits, groups thousands.
func parseNumber(token string) decimal.NullDecimal {
	s := strings.Trim(strings.TrimSpace(token), ".,")
	if s == "" || s == "-" {
		return decimal.NullDecimal{}
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// NormalizeCurrency maps currency symbols and names to ISO 4217 codes.
// Unknown values fall back to def.
func NormalizeCurrency(currency, def string) string {
	normalized := strings.ToUpper(strings.TrimSpace(currency))
	if normalized == "" {
		return def
	}

	switch normalized {
	case "€", "EURO", "EUROS", "EUR":
		return "EUR"
	case "$", "DOLLAR", "DOLLARS", "USD", "US$":
		return "USD"
	case "£", "POUND", "POUNDS", "GBP":
		return "GBP"
	case "CHF", "FR.", "SWISS FRANC", "FRANC SUISSE":
		return "CHF"
	default:
		if len(normalized) == 3 && isUpperAlpha(normalized) {
			return normalized
		}
		return def
	}
}

func isUpperAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// cleanText composes accents, collapses runs of whitespace and returns nil for
// blank input.
func cleanText(s string) *string {
	s = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	if s == "" {
		return nil
	}
	return &s
}
