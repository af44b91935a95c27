// internal/pricing/checkout_test.go
package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tianguisbeats/tianguis-backend/internal/models"
)

var testRates = map[string]float64{
	"MXN": 1,
	"USD": 0.058,
	"EUR": 0.053,
}

func TestCalculateTotalsNoCoupon(t *testing.T) {
	seller := uuid.New()
	lines := []CartLine{
		beatLine(seller, 500),
		beatLine(seller, 300),
	}

	totals, err := CalculateTotals(lines, nil, "MXN", testRates)
	require.NoError(t, err)

	assert.Equal(t, 800.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Discount)
	assert.Equal(t, 800.0, totals.TotalBase)
	assert.Equal(t, 800.0, totals.TotalCharged)
	assert.Len(t, totals.Lines, 2)
	for _, line := range totals.Lines {
		assert.Equal(t, line.Price, line.ChargedPrice)
	}
}

func TestCalculateTotalsWithDiscount(t *testing.T) {
	seller := uuid.New()
	discounted := beatLine(seller, 500)
	fullPrice := beatLine(seller, 800)
	lines := []CartLine{discounted, fullPrice}

	ctx := &DiscountContext{
		CouponID:    uuid.New(),
		Code:        "P1",
		Percentage:  20,
		EligibleIDs: []string{discounted.ID},
		Amount:      100,
	}

	totals, err := CalculateTotals(lines, ctx, "MXN", testRates)
	require.NoError(t, err)

	assert.Equal(t, 1300.0, totals.Subtotal)
	assert.InDelta(t, 100.0, totals.Discount, Epsilon)
	assert.InDelta(t, 1200.0, totals.TotalBase, Epsilon)
	assert.InDelta(t, 1200.0, totals.TotalCharged, Epsilon)

	assert.InDelta(t, 400.0, totals.Lines[0].ChargedPrice, Epsilon)
	assert.Equal(t, 800.0, totals.Lines[1].ChargedPrice)
}

func TestConversionHappensAfterDiscount(t *testing.T) {
	seller := uuid.New()
	line := beatLine(seller, 1000)

	ctx := &DiscountContext{
		CouponID:    uuid.New(),
		Code:        "MITAD",
		Percentage:  50,
		EligibleIDs: []string{line.ID},
		Amount:      500,
	}

	totals, err := CalculateTotals([]CartLine{line}, ctx, "USD", testRates)
	require.NoError(t, err)

	// 1000 MXN -50% = 500 MXN, converted once: 500 * 0.058 = 29 USD.
	assert.InDelta(t, 29.0, totals.TotalCharged, Epsilon)
	assert.InDelta(t, 500.0, totals.TotalBase, Epsilon)
	assert.Equal(t, "USD", totals.Currency)
}

func TestTotalBaseEqualsSubtotalMinusDiscount(t *testing.T) {
	seller := uuid.New()
	lines := []CartLine{
		beatLine(seller, 199),
		beatLine(seller, 349),
		beatLine(seller, 3500),
	}
	ctx := &DiscountContext{
		CouponID:    uuid.New(),
		Code:        "TERCIO",
		Percentage:  33.33,
		EligibleIDs: []string{lines[0].ID, lines[2].ID},
	}

	totals, err := CalculateTotals(lines, ctx, "MXN", testRates)
	require.NoError(t, err)
	assert.InDelta(t, totals.Subtotal-totals.Discount, totals.TotalBase, Epsilon)
}

func TestUnknownCurrencyRejected(t *testing.T) {
	lines := []CartLine{beatLine(uuid.New(), 100)}

	_, err := CalculateTotals(lines, nil, "GBP", testRates)
	assert.Error(t, err)
}

func TestEmptyCurrencyMeansBase(t *testing.T) {
	lines := []CartLine{beatLine(uuid.New(), 250)}

	totals, err := CalculateTotals(lines, nil, "", testRates)
	require.NoError(t, err)
	assert.Equal(t, 250.0, totals.TotalCharged)
}

func TestValidateClientTotal(t *testing.T) {
	lines := []CartLine{beatLine(uuid.New(), 499)}
	totals, err := CalculateTotals(lines, nil, "MXN", testRates)
	require.NoError(t, err)

	assert.NoError(t, ValidateClientTotal(totals, 499))
	assert.NoError(t, ValidateClientTotal(totals, 499.005))
	assert.ErrorIs(t, ValidateClientTotal(totals, 450), ErrTotalMismatch)
}

func TestBeatLineID(t *testing.T) {
	beatID := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000001")
	assert.Equal(t, "a1b2c3d4-0000-0000-0000-000000000001-mp3", BeatLineID(beatID, "mp3"))
}

func TestDiscountContextNilCovers(t *testing.T) {
	var ctx *DiscountContext
	assert.False(t, ctx.Covers("anything"))
}

func TestSellerBeatsCouponEndToEnd(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()
	lines := []CartLine{
		beatLine(p1, 500),
		{ID: uuid.New().String(), Type: models.CartItemService, Title: "Mezcla", Price: 300, SellerID: p1},
		beatLine(p2, 500),
	}

	ctx, rejection := ResolveCoupon(sellerCoupon(p1, 20, models.CouponScopeBeats), lines, now)
	require.Nil(t, rejection)
	require.Equal(t, []string{lines[0].ID}, ctx.EligibleIDs)
	assert.InDelta(t, 100.0, ctx.Amount, Epsilon)

	totals, err := CalculateTotals(lines, ctx, "MXN", testRates)
	require.NoError(t, err)
	assert.Equal(t, 1300.0, totals.Subtotal)
	assert.InDelta(t, 100.0, totals.Discount, Epsilon)
	assert.InDelta(t, 1200.0, totals.TotalCharged, Epsilon)
}

func TestPlanLineDiscountEndToEnd(t *testing.T) {
	plan := planLine(models.SubscriptionTierPremium, 199)

	ctx, rejection := ResolveCoupon(adminCoupon(50, models.CouponTargetPremium), []CartLine{plan}, now)
	require.Nil(t, rejection)

	totals, err := CalculateTotals([]CartLine{plan}, ctx, "MXN", testRates)
	require.NoError(t, err)
	assert.InDelta(t, 99.5, totals.TotalCharged, Epsilon)
}
