// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAdminAccessDenied      = "auth.admin_access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Beats
	KeyBeatNotFound = "beat.not_found"
	KeyBeatCreated  = "beat.created"
	KeyBeatUpdated  = "beat.updated"
	KeyBeatDeleted  = "beat.deleted"
	KeyBeatSoldOut  = "beat.sold_out"

	// Coupons
	KeyCouponNotFound = "coupon.not_found"
	KeyCouponApplied  = "coupon.applied"
	KeyCouponCreated  = "coupon.created"

	// Checkout
	KeyCheckoutCreated       = "checkout.created"
	KeyCheckoutConfirmed     = "checkout.confirmed"
	KeyCheckoutTotalMismatch = "checkout.total_mismatch"
	KeyCheckoutPaymentFailed = "checkout.payment_failed"

	// Orders
	KeyOrderNotFound = "order.not_found"

	// Contracts
	KeyContractNotReady = "contract.not_ready"
	KeyContractNotFound = "contract.not_found"
)
