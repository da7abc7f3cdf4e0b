package lineitems

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
)

// Line is one product row in a working order, priced at the unit price that
// was in effect when the line entered the set.
type Line struct {
	ProductID uuid.UUID
	UnitPrice decimal.Decimal
	Quantity  int
}

// Set is the in-memory working state of an order's lines, keyed by product.
// Quantity 0 is a legal transient state meaning "marked for removal"; the
// diff step turns it into a delete.
type Set struct {
	lines map[uuid.UUID]Line
	order []uuid.UUID
}

func New() *Set {
	return &Set{lines: make(map[uuid.UUID]Line)}
}

// FromLines builds a working set from already-persisted lines.
func FromLines(lines []Line) *Set {
	s := New()
	for _, ln := range lines {
		if _, ok := s.lines[ln.ProductID]; !ok {
			s.order = append(s.order, ln.ProductID)
		}
		s.lines[ln.ProductID] = ln
	}
	return s
}

// Add puts a product into the set, incrementing the quantity when a line for
// it already exists. The existing line keeps its original unit price.
func (s *Set) Add(productID uuid.UUID, unitPrice decimal.Decimal, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity to add must be positive").
			WithDetails(map[string]any{"productId": productID, "quantity": quantity})
	}

	if existing, ok := s.lines[productID]; ok {
		existing.Quantity += quantity
		s.lines[productID] = existing
		return nil
	}

	s.lines[productID] = Line{ProductID: productID, UnitPrice: unitPrice, Quantity: quantity}
	s.order = append(s.order, productID)
	return nil
}

// SetQuantity overwrites a line's quantity. Zero is allowed and marks the
// line for removal; negatives are rejected.
func (s *Set) SetQuantity(productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative").
			WithDetails(map[string]any{"productId": productID, "quantity": quantity})
	}

	line, ok := s.lines[productID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no line for product %s", productID))
	}

	line.Quantity = quantity
	s.lines[productID] = line
	return nil
}

// Remove drops the line entirely. Removing an absent product is a no-op.
func (s *Set) Remove(productID uuid.UUID) {
	if _, ok := s.lines[productID]; !ok {
		return
	}
	delete(s.lines, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Lines returns the working lines in insertion order, zero-quantity lines
// included.
func (s *Set) Lines() []Line {
	out := make([]Line, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.lines[id])
	}
	return out
}

// Len counts lines with positive quantity.
func (s *Set) Len() int {
	n := 0
	for _, ln := range s.lines {
		if ln.Quantity > 0 {
			n++
		}
	}
	return n
}

// Subtotal sums quantity*unitPrice over positive-quantity lines. This is the
// pre-discount amount the pricing schedule keys off.
func (s *Set) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, ln := range s.lines {
		if ln.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(ln.UnitPrice.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	return subtotal
}

// Diff is the disjoint change set between a working Set and the persisted
// lines of the same order.
type Diff struct {
	Inserts []Line
	Updates []Line
	Deletes []uuid.UUID
}

// Diff partitions the working state against persisted lines:
//   - persisted lines absent from the set, or present at quantity 0, delete;
//   - persisted lines present with positive quantity update (callers restamp
//     order-scoped fields, so every surviving line is an update);
//   - unpersisted positive-quantity lines insert;
//   - unpersisted zero-quantity lines are discarded.
func (s *Set) Diff(persisted []Line) Diff {
	persistedByID := make(map[uuid.UUID]Line, len(persisted))
	for _, ln := range persisted {
		persistedByID[ln.ProductID] = ln
	}

	var diff Diff
	for _, ln := range persisted {
		working, ok := s.lines[ln.ProductID]
		if !ok || working.Quantity == 0 {
			diff.Deletes = append(diff.Deletes, ln.ProductID)
		}
	}
	for _, id := range s.order {
		working := s.lines[id]
		if working.Quantity <= 0 {
			continue
		}
		if _, ok := persistedByID[id]; ok {
			diff.Updates = append(diff.Updates, working)
		} else {
			diff.Inserts = append(diff.Inserts, working)
		}
	}
	return diff
}
