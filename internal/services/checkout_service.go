// internal/services/checkout_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"gorm.io/gorm"

	"github.com/tianguisbeats/tianguis-backend/internal/config"
	"github.com/tianguisbeats/tianguis-backend/internal/licensing"
	"github.com/tianguisbeats/tianguis-backend/internal/models"
	"github.com/tianguisbeats/tianguis-backend/internal/pricing"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrBeatSold          = errors.New("beat is no longer for sale")
	ErrLicenseNotForSale = errors.New("license is not for sale on this beat")
	ErrPaymentIncomplete = errors.New("payment has not been completed")
	ErrEmptyCart         = errors.New("cart is empty")
)

// errOrderFinalized signals that a concurrent confirmation won the guarded
// status update; its transaction already ran the side effects.
var errOrderFinalized = errors.New("order already finalized")

type CheckoutService struct {
	db            *gorm.DB
	cfg           *config.Config
	coupons       *CouponService
	subscriptions *SubscriptionService
	contracts     *ContractService
	notifications *NotificationService
}

// CartItemRequest is one client-side cart entry. Prices are never taken from
// the client; each entry is re-priced from the database at checkout time.
type CartItemRequest struct {
	Type       models.CartItemType     `json:"type" validate:"required"`
	BeatID     *uuid.UUID              `json:"beat_id,omitempty"`
	LicenseID  string                  `json:"license_id,omitempty"`
	SoundKitID *uuid.UUID              `json:"sound_kit_id,omitempty"`
	ServiceID  *uuid.UUID              `json:"service_id,omitempty"`
	PlanTier   models.SubscriptionTier `json:"plan_tier,omitempty"`
}

type CheckoutRequest struct {
	Items          []CartItemRequest `json:"items" validate:"required,min=1"`
	CouponCode     string            `json:"coupon_code,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	DisplayedTotal float64           `json:"displayed_total,omitempty"`
}

type CheckoutResponse struct {
	Order       *models.Order           `json:"order"`
	Totals      *pricing.CheckoutTotals `json:"totals"`
	RedirectURL string                  `json:"redirect_url"`
}

func NewCheckoutService(
	db *gorm.DB,
	cfg *config.Config,
	coupons *CouponService,
	subscriptions *SubscriptionService,
	contracts *ContractService,
	notifications *NotificationService,
) *CheckoutService {
	stripe.Key = cfg.Payment.StripeSecretKey
	return &CheckoutService{
		db:            db,
		cfg:           cfg,
		coupons:       coupons,
		subscriptions: subscriptions,
		contracts:     contracts,
		notifications: notifications,
	}
}

// buildCartLines re-prices every requested item from the database. The client
// payload only identifies items; titles, sellers and prices are authoritative
// server state.
func (s *CheckoutService) buildCartLines(items []CartItemRequest) ([]pricing.CartLine, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]pricing.CartLine, 0, len(items))
	seen := make(map[string]bool, len(items))

	for _, item := range items {
		var line pricing.CartLine

		switch item.Type {
		case models.CartItemBeat:
			if item.BeatID == nil || item.LicenseID == "" {
				return nil, errors.New("beat items require beat_id and license_id")
			}
			var beat models.Beat
			if err := s.db.First(&beat, "id = ?", *item.BeatID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrBeatNotFound
				}
				return nil, fmt.Errorf("database error: %w", err)
			}
			if beat.Sold {
				return nil, ErrBeatSold
			}
			license, ok := licensing.LicenseFor(&beat, licensing.TierID(item.LicenseID))
			if !ok {
				return nil, ErrLicenseNotForSale
			}
			line = pricing.CartLine{
				ID:        pricing.BeatLineID(beat.ID, item.LicenseID),
				Type:      models.CartItemBeat,
				Title:     beat.Title,
				Price:     license.Price,
				SellerID:  beat.ProducerID,
				LicenseID: item.LicenseID,
			}

		case models.CartItemSoundKit:
			if item.SoundKitID == nil {
				return nil, errors.New("sound kit items require sound_kit_id")
			}
			var kit models.SoundKit
			if err := s.db.First(&kit, "id = ?", *item.SoundKitID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errors.New("sound kit not found")
				}
				return nil, fmt.Errorf("database error: %w", err)
			}
			price := kit.Price
			if price <= 0 {
				price = licensing.DefaultPrice(licensing.TierSoundKit)
			}
			line = pricing.CartLine{
				ID:       kit.ID.String(),
				Type:     models.CartItemSoundKit,
				Title:    kit.Title,
				Price:    price,
				SellerID: kit.ProducerID,
			}

		case models.CartItemService:
			if item.ServiceID == nil {
				return nil, errors.New("service items require service_id")
			}
			var svc models.ServiceListing
			if err := s.db.First(&svc, "id = ? AND is_active = ?", *item.ServiceID, true).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, errors.New("service not found")
				}
				return nil, fmt.Errorf("database error: %w", err)
			}
			line = pricing.CartLine{
				ID:       svc.ID.String(),
				Type:     models.CartItemService,
				Title:    svc.Title,
				Price:    svc.Price,
				SellerID: svc.ProducerID,
			}

		case models.CartItemPlan:
			planLine, err := PlanLine(item.PlanTier)
			if err != nil {
				return nil, err
			}
			line = planLine

		default:
			return nil, fmt.Errorf("unknown cart item type %q", item.Type)
		}

		// A beat may appear under several licenses but never twice under the
		// same one; other items at most once.
		if seen[line.ID] {
			return nil, fmt.Errorf("duplicate cart item %q", line.ID)
		}
		seen[line.ID] = true
		lines = append(lines, line)
	}

	return lines, nil
}

// Quote re-prices a cart without creating anything: the storefront uses it to
// preview totals and to validate a coupon as the buyer types it. The coupon
// outcome comes back as data, never as an infrastructure error.
func (s *CheckoutService) Quote(req *CheckoutRequest) (*pricing.CheckoutTotals, *pricing.DiscountContext, *pricing.CouponError, error) {
	lines, err := s.buildCartLines(req.Items)
	if err != nil {
		return nil, nil, nil, err
	}

	var discount *pricing.DiscountContext
	if req.CouponCode != "" {
		ctx, rejection, err := s.coupons.Resolve(req.CouponCode, lines)
		if err != nil {
			return nil, nil, nil, err
		}
		if rejection != nil {
			return nil, nil, rejection, nil
		}
		discount = ctx
	}

	totals, err := pricing.CalculateTotals(lines, discount, req.Currency, s.cfg.Currency.Rates)
	if err != nil {
		return nil, nil, nil, err
	}
	return totals, discount, nil, nil
}

// CreateCheckout re-prices the cart, revalidates the coupon server-side,
// opens a Stripe Checkout session and records a pending order under the
// session id. Any failure leaves the cart and catalog untouched. A cart whose
// total is zero (free licenses, 100% coupons) skips the payment processor and
// completes immediately.
func (s *CheckoutService) CreateCheckout(buyerID uuid.UUID, req *CheckoutRequest) (*CheckoutResponse, *pricing.CouponError, error) {
	totals, discount, rejection, err := s.Quote(req)
	if err != nil {
		return nil, nil, err
	}
	if rejection != nil {
		return nil, rejection, nil
	}

	// Reject when the total the buyer saw no longer matches reality (stale
	// cart, changed prices). Zero means the client did not send one.
	if req.DisplayedTotal > 0 {
		if err := pricing.ValidateClientTotal(totals, req.DisplayedTotal); err != nil {
			return nil, nil, err
		}
	}

	if totals.TotalCharged <= pricing.Epsilon {
		return s.completeFreeCheckout(buyerID, totals, discount)
	}

	sess, err := s.createStripeSession(totals)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	order, err := s.persistOrder(buyerID, sess.ID, totals, discount)
	if err != nil {
		return nil, nil, err
	}

	return &CheckoutResponse{
		Order:       order,
		Totals:      totals,
		RedirectURL: sess.URL,
	}, nil, nil
}

// completeFreeCheckout records and immediately finalizes a zero-total order.
// There is nothing to charge, so there is no pending state.
func (s *CheckoutService) completeFreeCheckout(buyerID uuid.UUID, totals *pricing.CheckoutTotals, discount *pricing.DiscountContext) (*CheckoutResponse, *pricing.CouponError, error) {
	orderKey, err := utils.GenerateOrderKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate order key: %w", err)
	}

	order, err := s.persistOrder(buyerID, orderKey, totals, discount)
	if err != nil {
		return nil, nil, err
	}

	var full models.Order
	if err := s.db.Preload("Items").Preload("Buyer").First(&full, "id = ?", order.ID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to reload order: %w", err)
	}
	if err := s.finalizeOrder(&full); err != nil {
		return nil, nil, err
	}

	return &CheckoutResponse{
		Order:       &full,
		Totals:      totals,
		RedirectURL: s.cfg.Payment.SuccessURL,
	}, nil, nil
}

// newOrderRecord maps checkout totals onto an order row. Subtotal, discount
// and total stay in the base currency so they balance against the item
// charged prices; ChargedAmount carries what the buyer pays in Currency.
func newOrderRecord(buyerID uuid.UUID, orderKey string, totals *pricing.CheckoutTotals, discount *pricing.DiscountContext) *models.Order {
	order := &models.Order{
		OrderKey:      orderKey,
		BuyerID:       buyerID,
		Subtotal:      totals.Subtotal,
		DiscountTotal: totals.Discount,
		TotalAmount:   totals.TotalBase,
		ChargedAmount: totals.TotalCharged,
		Currency:      totals.Currency,
		Status:        models.OrderStatusPending,
	}
	if totals.Currency == "" {
		order.Currency = pricing.BaseCurrency
	}
	if discount != nil {
		order.CouponID = &discount.CouponID
		order.CouponCode = discount.Code
	}
	return order
}

// persistOrder writes the order and its items in one transaction.
func (s *CheckoutService) persistOrder(buyerID uuid.UUID, orderKey string, totals *pricing.CheckoutTotals, discount *pricing.DiscountContext) (*models.Order, error) {
	order := newOrderRecord(buyerID, orderKey, totals, discount)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for _, line := range totals.Lines {
			item := &models.OrderItem{
				OrderID:         order.ID,
				LineID:          line.ID,
				ItemType:        line.Type,
				Title:           line.Title,
				SellerID:        line.SellerID,
				LicenseType:     line.LicenseID,
				BasePrice:       line.Price,
				ChargedPrice:    line.ChargedPrice,
				DiscountApplied: line.Price - line.ChargedPrice,
			}
			switch line.Type {
			case models.CartItemBeat:
				beatID, licErr := beatIDFromLine(line.CartLine)
				if licErr != nil {
					return licErr
				}
				item.BeatID = &beatID
			case models.CartItemSoundKit:
				kitID, parseErr := uuid.Parse(line.ID)
				if parseErr != nil {
					return fmt.Errorf("invalid sound kit line id: %w", parseErr)
				}
				item.SoundKitID = &kitID
			case models.CartItemService:
				svcID, parseErr := uuid.Parse(line.ID)
				if parseErr != nil {
					return fmt.Errorf("invalid service line id: %w", parseErr)
				}
				item.ServiceID = &svcID
			case models.CartItemPlan:
				item.Metadata = models.JSONB{"plan_tier": string(line.SubscriptionTier)}
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmCheckout finalizes an order after the buyer returns from the payment
// page. It verifies the payment with Stripe, then atomically completes the
// order, redeems the coupon, closes exclusively sold beats and activates
// subscriptions. Contract generation and email happen asynchronously after
// commit. Confirming an already-completed order is a no-op.
func (s *CheckoutService) ConfirmCheckout(buyerID uuid.UUID, orderKey string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").Preload("Buyer").
		Where("order_key = ? AND buyer_id = ?", orderKey, buyerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if order.Status == models.OrderStatusCompleted {
		return &order, nil
	}

	if err := s.verifyPayment(orderKey); err != nil {
		return nil, err
	}

	if err := s.finalizeOrder(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// finalizeOrder atomically completes a paid order: marks it completed, redeems
// the coupon, closes exclusively sold beats, counts kit sales and activates
// subscriptions. Contract generation and the confirmation email run
// asynchronously after commit. The order must carry its Items and Buyer.
// Only the confirmation that flips the row out of pending runs the side
// effects, so concurrent confirmations of the same order settle exactly once.
func (s *CheckoutService) finalizeOrder(order *models.Order) error {
	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":  models.OrderStatusCompleted,
				"paid_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to complete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errOrderFinalized
		}

		// Usage is only counted on confirmed payment. A coupon exhausted
		// between resolution and confirmation still honors this order's
		// discount; the buyer already paid the discounted amount.
		if order.CouponID != nil {
			if err := s.coupons.Redeem(tx, *order.CouponID); err != nil {
				if errors.Is(err, ErrCouponExhausted) {
					logrus.WithFields(logrus.Fields{
						"order_key": order.OrderKey,
						"coupon_id": order.CouponID,
					}).Warn("Coupon exhausted between resolution and confirmation")
				} else {
					return err
				}
			}
		}

		for _, item := range order.Items {
			switch {
			case item.ItemType == models.CartItemBeat && item.LicenseType == string(licensing.TierExclusiva):
				// Exclusivity closes the whole catalog for the beat.
				if err := tx.Model(&models.Beat{}).
					Where("id = ?", item.BeatID).
					Updates(map[string]interface{}{
						"vendido":    true,
						"vendido_at": now,
					}).Error; err != nil {
					return fmt.Errorf("failed to mark beat as sold: %w", err)
				}
			case item.ItemType == models.CartItemSoundKit:
				if err := tx.Model(&models.SoundKit{}).
					Where("id = ?", item.SoundKitID).
					Update("sales_count", gorm.Expr("sales_count + 1")).Error; err != nil {
					return fmt.Errorf("failed to bump kit sales: %w", err)
				}
			case item.ItemType == models.CartItemPlan:
				tier := planTierFromItem(&item)
				if tier == "" {
					return fmt.Errorf("order item %s has no plan tier", item.ID)
				}
				if err := s.subscriptions.Activate(tx, order.BuyerID, tier, order.OrderKey); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if errors.Is(err, errOrderFinalized) {
		order.Status = models.OrderStatusCompleted
		return nil
	}
	if err != nil {
		return err
	}

	order.Status = models.OrderStatusCompleted
	order.PaidAt = &now

	snapshot := *order
	go func() {
		if s.contracts != nil {
			if err := s.contracts.GenerateForOrder(snapshot.ID); err != nil {
				logrus.WithError(err).WithField("order_key", snapshot.OrderKey).
					Error("Failed to generate contracts for order")
			}
		}
		if s.notifications != nil {
			if err := s.notifications.SendPurchaseConfirmation(&snapshot); err != nil {
				logrus.WithError(err).WithField("order_key", snapshot.OrderKey).
					Error("Failed to send purchase confirmation")
			}
		}
	}()

	return nil
}

// GetOrders returns a buyer's order history, newest first.
func (s *CheckoutService) GetOrders(buyerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder fetches one order, scoped to its buyer.
func (s *CheckoutService) GetOrder(buyerID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Where("id = ? AND buyer_id = ?", orderID, buyerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

func (s *CheckoutService) createStripeSession(totals *pricing.CheckoutTotals) (*stripe.CheckoutSession, error) {
	currency := totals.Currency
	if currency == "" {
		currency = pricing.BaseCurrency
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(totals.Lines))
	for _, line := range totals.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Title),
				},
				UnitAmount: stripe.Int64(int64(math.Round(line.ConvertedPrice * 100))),
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(s.cfg.Payment.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cfg.Payment.CancelURL),
	}

	return session.New(params)
}

func (s *CheckoutService) verifyPayment(sessionID string) error {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch payment session: %w", err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return ErrPaymentIncomplete
	}
	return nil
}

// beatIDFromLine recovers the beat uuid from a "<beatID>-<licenseID>" line id.
// A uuid is exactly 36 characters, so the prefix is fixed-width.
func beatIDFromLine(line pricing.CartLine) (uuid.UUID, error) {
	if len(line.ID) < 36 {
		return uuid.Nil, fmt.Errorf("invalid beat line id %q", line.ID)
	}
	return uuid.Parse(line.ID[:36])
}

func planTierFromItem(item *models.OrderItem) models.SubscriptionTier {
	if item.Metadata == nil {
		return ""
	}
	if raw, ok := item.Metadata["plan_tier"].(string); ok {
		return models.SubscriptionTier(raw)
	}
	return ""
}
