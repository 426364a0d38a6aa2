package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateTable is the ordered set of legal tax percentages. Order matters: when
// an observed rate is equidistant from two candidates the earlier one wins.
type RateTable []decimal.Decimal

// DefaultRateTable returns the Andorran IGI rates: 0, 1, 2.5, 4.5 and 9.5 %.
func DefaultRateTable() RateTable {
	return RateTable{
		decimal.Zero,
		decimal.NewFromInt(1),
		decimal.RequireFromString("2.5"),
		decimal.RequireFromString("4.5"),
		decimal.RequireFromString("9.5"),
	}
}

var defaultRates = DefaultRateTable()

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Snap returns the candidate closest to the observed rate rounded to two
// decimals. A null rate, or an empty table, yields null.
func (t RateTable) Snap(observed decimal.NullDecimal) decimal.NullDecimal {
	if !observed.Valid || len(t) == 0 {
		return decimal.NullDecimal{}
	}
	r := observed.Decimal.Round(2)
	best := t[0]
	bestDist := best.Sub(r).Abs()
	for _, c := range t[1:] {
		if d := c.Sub(r).Abs(); d.LessThan(bestDist) {
			best, bestDist = c, d
		}
	}
	return decimal.NewNullDecimal(best)
}

// Code derives the tax code label of a rate after snapping it, e.g. "IGI_9_5"
// for 9.5 % and "IGI_0_0" for exempt lines.
func (t RateTable) Code(rate decimal.NullDecimal) *string {
	snapped := t.Snap(rate)
	if !snapped.Valid {
		return nil
	}
	code := "IGI_" + strings.ReplaceAll(snapped.Decimal.StringFixed(1), ".", "_")
	return &code
}

// SnapRate snaps an observed rate against the default table.
func SnapRate(observed decimal.NullDecimal) decimal.NullDecimal {
	return defaultRates.Snap(observed)
}

// TaxCodeFor returns the default-table code for a rate.
func TaxCodeFor(rate decimal.NullDecimal) *string {
	return defaultRates.Code(rate)
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}
