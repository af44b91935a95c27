// internal/pricing/checkout.go
package pricing

import (
	"errors"
	"fmt"
	"math"
)

// Tolerance for comparing money amounts in the base currency's smallest unit.
const Epsilon = 0.01

// BaseCurrency is the currency beat and kit prices are stored in.
const BaseCurrency = "MXN"

// ErrTotalMismatch signals that the total the client displayed no longer
// matches the server-side computation (stale price, tampered payload). The
// checkout must be rejected rather than charging a different amount than the
// buyer saw.
var ErrTotalMismatch = errors.New("displayed total does not match computed total")

// ChargedLine is a cart line with its final per-unit price: discounted in the
// base currency first, then converted.
type ChargedLine struct {
	CartLine
	ChargedPrice   float64 `json:"charged_price"`   // base currency, after discount
	ConvertedPrice float64 `json:"converted_price"` // target currency
}

type CheckoutTotals struct {
	Lines        []ChargedLine `json:"lines"`
	Currency     string        `json:"currency"`
	Subtotal     float64       `json:"subtotal"`      // base currency
	Discount     float64       `json:"discount"`      // base currency
	TotalBase    float64       `json:"total_base"`    // base currency
	TotalCharged float64       `json:"total_charged"` // target currency
}

// CalculateTotals produces the final payable amount and the per-line charged
// prices sent to the payment processor. The discount percentage is always
// computed against the base-currency price; conversion happens exactly once,
// after discounting. ctx may be nil (no coupon applied).
func CalculateTotals(lines []CartLine, ctx *DiscountContext, currency string, rates map[string]float64) (*CheckoutTotals, error) {
	rate, err := conversionRate(currency, rates)
	if err != nil {
		return nil, err
	}

	var percentage float64
	if ctx != nil {
		percentage = ctx.Percentage
	}

	totals := &CheckoutTotals{
		Lines:    make([]ChargedLine, 0, len(lines)),
		Currency: currency,
	}

	for _, line := range lines {
		charged := line.Price
		if ctx.Covers(line.ID) {
			charged = line.Price * (1 - percentage/100)
			totals.Discount += line.Price - charged
		}

		totals.Subtotal += line.Price
		totals.TotalBase += charged
		converted := round2(charged * rate)
		totals.TotalCharged += converted

		totals.Lines = append(totals.Lines, ChargedLine{
			CartLine:       line,
			ChargedPrice:   charged,
			ConvertedPrice: converted,
		})
	}

	// Invariant: finalTotal == subtotal - discount in the base currency.
	if math.Abs(totals.TotalBase-(totals.Subtotal-totals.Discount)) > Epsilon {
		return nil, fmt.Errorf("checkout totals out of balance: %.4f vs %.4f",
			totals.TotalBase, totals.Subtotal-totals.Discount)
	}

	return totals, nil
}

// ValidateClientTotal rejects a checkout whose client-displayed total
// disagrees with the server-side computation.
func ValidateClientTotal(totals *CheckoutTotals, clientTotal float64) error {
	if math.Abs(totals.TotalCharged-clientTotal) > Epsilon {
		return ErrTotalMismatch
	}
	return nil
}

func conversionRate(currency string, rates map[string]float64) (float64, error) {
	if currency == "" || currency == BaseCurrency {
		return 1, nil
	}
	rate, ok := rates[currency]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("no conversion rate configured for currency %q", currency)
	}
	return rate, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
