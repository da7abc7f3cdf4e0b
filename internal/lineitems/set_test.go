package lineitems

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
)

func TestAddIncrementsExistingLine(t *testing.T) {
	t.Parallel()

	set := New()
	productID := uuid.New()
	price := decimal.NewFromInt(150)

	if err := set.Add(productID, price, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := set.Add(productID, decimal.NewFromInt(999), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := set.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", lines[0].Quantity)
	}
	if !lines[0].UnitPrice.Equal(price) {
		t.Fatalf("existing line must keep its unit price, got %s", lines[0].UnitPrice)
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	set := New()
	err := set.Add(uuid.New(), decimal.NewFromInt(10), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetQuantity(t *testing.T) {
	t.Parallel()

	set := New()
	productID := uuid.New()
	if err := set.Add(productID, decimal.NewFromInt(10), 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := set.SetQuantity(productID, 0); err != nil {
		t.Fatalf("quantity 0 must be allowed: %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("zero-quantity line must not count, Len = %d", set.Len())
	}

	err := set.SetQuantity(productID, -1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative quantity, got %v", err)
	}

	err = set.SetQuantity(uuid.New(), 3)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestSubtotalSkipsZeroQuantityLines(t *testing.T) {
	t.Parallel()

	set := New()
	kept := uuid.New()
	dropped := uuid.New()
	mustAdd(t, set, kept, 250, 4)
	mustAdd(t, set, dropped, 1000, 1)
	if err := set.SetQuantity(dropped, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := set.Subtotal(); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("subtotal = %s, want 1000", got)
	}
}

func TestDiffPartitionsDisjointly(t *testing.T) {
	t.Parallel()

	existingKept := uuid.New()
	existingZeroed := uuid.New()
	existingRemoved := uuid.New()
	added := uuid.New()
	addedThenZeroed := uuid.New()

	persisted := []Line{
		{ProductID: existingKept, UnitPrice: decimal.NewFromInt(100), Quantity: 2},
		{ProductID: existingZeroed, UnitPrice: decimal.NewFromInt(200), Quantity: 1},
		{ProductID: existingRemoved, UnitPrice: decimal.NewFromInt(300), Quantity: 5},
	}

	set := FromLines(persisted)
	if err := set.SetQuantity(existingKept, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := set.SetQuantity(existingZeroed, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set.Remove(existingRemoved)
	mustAdd(t, set, added, 50, 3)
	mustAdd(t, set, addedThenZeroed, 60, 1)
	if err := set.SetQuantity(addedThenZeroed, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	diff := set.Diff(persisted)

	if len(diff.Inserts) != 1 || diff.Inserts[0].ProductID != added {
		t.Fatalf("unexpected inserts: %+v", diff.Inserts)
	}
	if len(diff.Updates) != 1 || diff.Updates[0].ProductID != existingKept || diff.Updates[0].Quantity != 7 {
		t.Fatalf("unexpected updates: %+v", diff.Updates)
	}
	if len(diff.Deletes) != 2 {
		t.Fatalf("unexpected deletes: %+v", diff.Deletes)
	}

	seen := map[uuid.UUID]int{}
	for _, ln := range diff.Inserts {
		seen[ln.ProductID]++
	}
	for _, ln := range diff.Updates {
		seen[ln.ProductID]++
	}
	for _, id := range diff.Deletes {
		seen[id]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Fatalf("product %s appears in more than one bucket", id)
		}
	}
}

func TestDiffRoundTrip(t *testing.T) {
	t.Parallel()

	persisted := []Line{
		{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(20), Quantity: 2},
	}

	// An untouched working set diffs to updates only: no inserts, no deletes.
	diff := FromLines(persisted).Diff(persisted)
	if len(diff.Inserts) != 0 || len(diff.Deletes) != 0 {
		t.Fatalf("untouched set should produce no inserts/deletes: %+v", diff)
	}
	if len(diff.Updates) != len(persisted) {
		t.Fatalf("expected %d updates, got %d", len(persisted), len(diff.Updates))
	}

	// Against an empty persisted state everything becomes an insert.
	diff = FromLines(persisted).Diff(nil)
	if len(diff.Inserts) != len(persisted) || len(diff.Updates) != 0 || len(diff.Deletes) != 0 {
		t.Fatalf("expected inserts only against empty state: %+v", diff)
	}
}

func mustAdd(t *testing.T, set *Set, productID uuid.UUID, price int64, qty int) {
	t.Helper()
	if err := set.Add(productID, decimal.NewFromInt(price), qty); err != nil {
		t.Fatalf("adding line: %v", err)
	}
}
