package aggregate

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100) //nolint:gochecknoglobals // constant
	two     = decimal.NewFromInt(2)   //nolint:gochecknoglobals // constant
)

// Percent returns 100*part/whole rounded to the nearest integer, halves away
// from zero. A zero whole yields 0.
// The quotient is exact (QuoRem); there is no intermediate rounding step.
func Percent(part, whole decimal.Decimal) int64 {
	if whole.IsZero() {
		return 0
	}
	q, r := part.Mul(hundred).QuoRem(whole, 0)
	if r.Abs().Mul(two).GreaterThanOrEqual(whole.Abs()) {
		if part.Sign()*whole.Sign() < 0 {
			q = q.Sub(decimal.NewFromInt(1))
		} else {
			q = q.Add(decimal.NewFromInt(1))
		}
	}
	return q.IntPart()
}
