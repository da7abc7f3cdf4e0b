package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/tru-distribution/orderdesk-backend/pkg/enums"
)

// PriceInfo carries the two price columns owned by a product.
type PriceInfo struct {
	RetailPrice decimal.Decimal
	DealerPrice decimal.Decimal
}

// Discount thresholds are strict greater-than boundaries over the order's
// subtotal before discount. The higher tier supersedes the lower one.
var (
	dealerTier1Threshold    = decimal.NewFromInt(510205)
	dealer6Tier2Threshold   = decimal.NewFromInt(1063900)
	dealer4Tier2Threshold   = decimal.NewFromInt(1041700)
	marketingTier2Threshold = decimal.NewFromInt(2500000)
)

var oneHundred = decimal.NewFromInt(100)

// Resolve returns the order-level discount percent for the given role and
// pre-discount subtotal. Pure and deterministic: callers re-resolve whenever
// the line-item set or role changes instead of caching a previous result.
func Resolve(role enums.Role, subtotal decimal.Decimal) int {
	switch role {
	case enums.RoleDealer6:
		if subtotal.GreaterThan(dealer6Tier2Threshold) {
			return 6
		}
		if subtotal.GreaterThan(dealerTier1Threshold) {
			return 2
		}
	case enums.RoleDealer4:
		if subtotal.GreaterThan(dealer4Tier2Threshold) {
			return 4
		}
		if subtotal.GreaterThan(dealerTier1Threshold) {
			return 2
		}
	case enums.RoleDealerMarketing:
		if subtotal.GreaterThan(marketingTier2Threshold) {
			return 4
		}
	}
	// counter_staff, admin, and unknown roles carry no order discount.
	return 0
}

// BasePrice selects the price column the role buys at: retail for counter
// staff and unknown roles, dealer for everyone else (admin included).
func BasePrice(role enums.Role, info PriceInfo) decimal.Decimal {
	if role == enums.RoleCounterStaff || !role.IsValid() {
		return info.RetailPrice
	}
	return info.DealerPrice
}

// DiscountedUnitPrice applies the order-level discount to one unit price.
func DiscountedUnitPrice(base decimal.Decimal, discountPercent int) decimal.Decimal {
	return applyDiscount(base, discountPercent)
}

// OrderTotal applies the order-level discount to the pre-discount subtotal.
func OrderTotal(subtotal decimal.Decimal, discountPercent int) decimal.Decimal {
	return applyDiscount(subtotal, discountPercent)
}

func applyDiscount(amount decimal.Decimal, discountPercent int) decimal.Decimal {
	if discountPercent <= 0 {
		return amount
	}
	factor := oneHundred.Sub(decimal.NewFromInt(int64(discountPercent)))
	return amount.Mul(factor).Div(oneHundred)
}
