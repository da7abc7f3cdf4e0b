package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tru-distribution/orderdesk-backend/pkg/enums"
)

func TestResolveThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		role     enums.Role
		subtotal int64
		want     int
	}{
		{"dealer6 at tier1 boundary", enums.RoleDealer6, 510205, 0},
		{"dealer6 just over tier1", enums.RoleDealer6, 510206, 2},
		{"dealer6 at tier2 boundary", enums.RoleDealer6, 1063900, 2},
		{"dealer6 just over tier2", enums.RoleDealer6, 1063901, 6},
		{"dealer4 just over tier1", enums.RoleDealer4, 510206, 2},
		{"dealer4 at tier2 boundary", enums.RoleDealer4, 1041700, 2},
		{"dealer4 just over tier2", enums.RoleDealer4, 1041701, 4},
		{"marketing at boundary", enums.RoleDealerMarketing, 2500000, 0},
		{"marketing just over", enums.RoleDealerMarketing, 2500001, 4},
		{"counter staff never discounts", enums.RoleCounterStaff, 99999999, 0},
		{"admin never discounts", enums.RoleAdmin, 99999999, 0},
		{"unknown role never discounts", enums.Role("visitor"), 99999999, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.role, decimal.NewFromInt(tc.subtotal))
			if got != tc.want {
				t.Fatalf("Resolve(%s, %d) = %d, want %d", tc.role, tc.subtotal, got, tc.want)
			}
		})
	}
}

func TestResolveMonotonicInSubtotal(t *testing.T) {
	t.Parallel()

	roles := []enums.Role{
		enums.RoleCounterStaff,
		enums.RoleDealer4,
		enums.RoleDealer6,
		enums.RoleDealerMarketing,
		enums.RoleAdmin,
	}
	subtotals := []int64{
		0, 1, 510204, 510205, 510206, 1041700, 1041701,
		1063900, 1063901, 2500000, 2500001, 10000000,
	}

	for _, role := range roles {
		prev := 0
		for _, subtotal := range subtotals {
			got := Resolve(role, decimal.NewFromInt(subtotal))
			if got < prev {
				t.Fatalf("discount shrank for %s: %d -> %d at subtotal %d", role, prev, got, subtotal)
			}
			prev = got
		}
	}
}

func TestBasePrice(t *testing.T) {
	t.Parallel()

	info := PriceInfo{
		RetailPrice: decimal.NewFromInt(1200),
		DealerPrice: decimal.NewFromInt(1000),
	}

	if got := BasePrice(enums.RoleCounterStaff, info); !got.Equal(info.RetailPrice) {
		t.Fatalf("counter staff should buy at retail, got %s", got)
	}
	if got := BasePrice(enums.Role(""), info); !got.Equal(info.RetailPrice) {
		t.Fatalf("unknown role should buy at retail, got %s", got)
	}
	if got := BasePrice(enums.RoleDealer6, info); !got.Equal(info.DealerPrice) {
		t.Fatalf("dealer should buy at dealer price, got %s", got)
	}
	if got := BasePrice(enums.RoleAdmin, info); !got.Equal(info.DealerPrice) {
		t.Fatalf("admin should buy at dealer price, got %s", got)
	}
}

func TestOrderTotalAppliesDiscountToWholeSubtotal(t *testing.T) {
	t.Parallel()

	subtotal := decimal.NewFromInt(1100000)
	got := OrderTotal(subtotal, 6)
	want := decimal.NewFromInt(1034000)
	if !got.Equal(want) {
		t.Fatalf("OrderTotal = %s, want %s", got, want)
	}

	if got := OrderTotal(subtotal, 0); !got.Equal(subtotal) {
		t.Fatalf("zero discount must be identity, got %s", got)
	}
}

func TestDiscountedUnitPrice(t *testing.T) {
	t.Parallel()

	got := DiscountedUnitPrice(decimal.NewFromInt(100000), 2)
	if !got.Equal(decimal.NewFromInt(98000)) {
		t.Fatalf("unexpected discounted price %s", got)
	}
}
