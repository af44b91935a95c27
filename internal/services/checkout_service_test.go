// internal/services/checkout_service_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tianguisbeats/tianguis-backend/internal/models"
	"github.com/tianguisbeats/tianguis-backend/internal/pricing"
)

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestBeatIDFromLine(t *testing.T) {
	beatID := uuid.New()
	line := pricing.CartLine{
		ID:        pricing.BeatLineID(beatID, "exclusiva"),
		Type:      models.CartItemBeat,
		LicenseID: "exclusiva",
	}

	got, err := beatIDFromLine(line)
	require.NoError(t, err)
	assert.Equal(t, beatID, got)
}

func TestBeatIDFromLineRejectsShortID(t *testing.T) {
	_, err := beatIDFromLine(pricing.CartLine{ID: "not-a-uuid"})
	assert.Error(t, err)
}

func TestPlanTierFromItem(t *testing.T) {
	item := &models.OrderItem{
		ItemType: models.CartItemPlan,
		Metadata: models.JSONB{"plan_tier": "premium"},
	}
	assert.Equal(t, models.SubscriptionTierPremium, planTierFromItem(item))

	assert.Equal(t, models.SubscriptionTier(""), planTierFromItem(&models.OrderItem{}))
}

func TestPlanLine(t *testing.T) {
	line, err := PlanLine(models.SubscriptionTierPro)
	require.NoError(t, err)
	assert.Equal(t, "plan-pro", line.ID)
	assert.Equal(t, models.CartItemPlan, line.Type)
	assert.Equal(t, 99.0, line.Price)
	assert.Equal(t, uuid.Nil, line.SellerID)

	_, err = PlanLine(models.SubscriptionTierFree)
	assert.Error(t, err)

	_, err = PlanLine(models.SubscriptionTier("platinum"))
	assert.Error(t, err)
}

func TestOrderRecordKeepsBaseCurrencyTotals(t *testing.T) {
	totals := &pricing.CheckoutTotals{
		Currency:     "USD",
		Subtotal:     1000,
		Discount:     500,
		TotalBase:    500,
		TotalCharged: 29,
	}

	order := newOrderRecord(uuid.New(), "cs_test_usd", totals, nil)
	assert.Equal(t, 1000.0, order.Subtotal)
	assert.Equal(t, 500.0, order.DiscountTotal)
	assert.Equal(t, 500.0, order.TotalAmount)
	assert.Equal(t, 29.0, order.ChargedAmount)
	assert.Equal(t, "USD", order.Currency)
	assert.InDelta(t, order.Subtotal-order.DiscountTotal, order.TotalAmount, pricing.Epsilon)
}

func TestOrderRecordDefaultsToBaseCurrency(t *testing.T) {
	totals := &pricing.CheckoutTotals{Subtotal: 199, TotalBase: 199, TotalCharged: 199}

	order := newOrderRecord(uuid.New(), "tb_free", totals, nil)
	assert.Equal(t, pricing.BaseCurrency, order.Currency)
	assert.Equal(t, order.TotalAmount, order.ChargedAmount)
}

func TestOrderRecordCarriesCoupon(t *testing.T) {
	discount := &pricing.DiscountContext{CouponID: uuid.New(), Code: "VERANO20"}
	totals := &pricing.CheckoutTotals{Subtotal: 500, Discount: 100, TotalBase: 400, TotalCharged: 400}

	order := newOrderRecord(uuid.New(), "cs_test_coupon", totals, discount)
	require.NotNil(t, order.CouponID)
	assert.Equal(t, discount.CouponID, *order.CouponID)
	assert.Equal(t, "VERANO20", order.CouponCode)
}

func TestFinalizeOrderCompletesPendingOrder(t *testing.T) {
	gdb, mock := mockDB(t)
	svc := &CheckoutService{db: gdb}

	order := &models.Order{
		BaseModel: models.BaseModel{ID: uuid.New()},
		OrderKey:  "cs_test_once",
		Status:    models.OrderStatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.finalizeOrder(order))
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.NotNil(t, order.PaidAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeOrderConfirmTwiceSettlesOnce(t *testing.T) {
	gdb, mock := mockDB(t)
	svc := &CheckoutService{db: gdb}

	couponID := uuid.New()
	order := &models.Order{
		BaseModel: models.BaseModel{ID: uuid.New()},
		OrderKey:  "cs_test_twice",
		CouponID:  &couponID,
		Status:    models.OrderStatusPending,
	}

	// The status row was already flipped by a concurrent confirmation: the
	// guarded UPDATE matches nothing, and neither the coupon redemption nor
	// the catalog updates run again.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.NoError(t, svc.finalizeOrder(order))
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlansOrderedByPrice(t *testing.T) {
	plans := Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, models.SubscriptionTierFree, plans[0].Tier)
	assert.Equal(t, models.SubscriptionTierPro, plans[1].Tier)
	assert.Equal(t, models.SubscriptionTierPremium, plans[2].Tier)
	assert.True(t, plans[0].MonthlyPrice < plans[1].MonthlyPrice)
	assert.True(t, plans[1].MonthlyPrice < plans[2].MonthlyPrice)
}
