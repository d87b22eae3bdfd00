package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var thousand = decimal.NewFromInt(1000) //nolint:gochecknoglobals // constant

// FormatCurrency renders d as whole US dollars with thousands separators, e.g. "$1,234,568".
func FormatCurrency(d decimal.Decimal) string {
	return dollars(d.Round(0))
}

// ShortenCurrency renders amounts of at least 1000 in thousands with up to two
// decimals ("$1.23K"); smaller amounts keep up to three decimals ("$999.5").
func ShortenCurrency(d decimal.Decimal) string {
	if d.GreaterThanOrEqual(thousand) {
		return dollars(d.Div(thousand).Round(2)) + "K"
	}
	return dollars(d.Round(3))
}

// FormatPercent renders an integer percentage, e.g. "25%".
func FormatPercent(p int64) string {
	return strconv.FormatInt(p, 10) + "%"
}

// usd groups the integer part with en-US separators.
var usd = message.NewPrinter(language.AmericanEnglish) //nolint:gochecknoglobals // shared printer

func dollars(d decimal.Decimal) string {
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
		d = d.Neg()
	}
	out := sign + "$" + usd.Sprintf("%d", d.IntPart())
	if frac := d.Sub(d.Truncate(0)); !frac.IsZero() {
		out += strings.TrimPrefix(frac.String(), "0")
	}
	return out
}
