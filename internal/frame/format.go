package frame

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const priceSignificantDigits = 4

var (
	one      = decimal.NewFromInt(1)
	thousand = decimal.New(1, 3)
)

// compactUnits maps SI prefixes onto the suffixes shown on the card, smallest first.
var compactUnits = []struct {
	prefix string
	suffix string
	base   decimal.Decimal
}{
	{prefix: "", suffix: "", base: one},
	{prefix: "k", suffix: "K", base: decimal.New(1, 3)},
	{prefix: "M", suffix: "M", base: decimal.New(1, 6)},
	{prefix: "G", suffix: "B", base: decimal.New(1, 9)},
	{prefix: "T", suffix: "T", base: decimal.New(1, 12)},
}

// FormatAmount renders a value compactly: 1.23B, 4.56M, 7.89K, 12.34, 0.0001234.
func FormatAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	if d.Abs().LessThan(one) {
		return FormatPrice(d)
	}

	_, prefix := humanize.ComputeSI(d.Abs().InexactFloat64())
	i := compactUnitIndex(prefix)
	scaled := d.Div(compactUnits[i].base).Round(2)
	// 999.995 rounds to 1000.00, which belongs to the next unit.
	if scaled.Abs().GreaterThanOrEqual(thousand) && i+1 < len(compactUnits) {
		i++
		scaled = d.Div(compactUnits[i].base).Round(2)
	}
	return scaled.StringFixed(2) + compactUnits[i].suffix
}

func compactUnitIndex(prefix string) int {
	for i, unit := range compactUnits {
		if unit.prefix == prefix {
			return i
		}
	}
	return len(compactUnits) - 1
}

// FormatPrice keeps four significant digits for sub-unit prices.
func FormatPrice(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	if d.Abs().GreaterThanOrEqual(one) {
		return d.StringFixed(4)
	}
	return d.Round(int32(leadingZeros(d) + priceSignificantDigits)).String()
}

func leadingZeros(d decimal.Decimal) int {
	fixed := d.Abs().StringFixed(36)
	frac := fixed[strings.IndexByte(fixed, '.')+1:]
	return len(frac) - len(strings.TrimLeft(frac, "0"))
}

// FormatCount adds thousands separators.
func FormatCount(n uint64) string {
	return humanize.BigComma(new(big.Int).SetUint64(n))
}
