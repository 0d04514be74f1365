// Package receipt maintains the receipt line items of an itemized split.
//
// Every operation is a pure transformation: it returns a new slice and leaves
// the input untouched. Insertion order is preserved for display only; no
// computation depends on it.
package receipt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

var (
	ErrItemNotFound    = errors.New("receipt item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrEmptyName       = errors.New("item name required")
	ErrDuplicateItem   = errors.New("receipt item ID already in use")
)

// ReconciliationState compares the items total with the transaction total.
type ReconciliationState string

const (
	// ExactMatch means the items cover the transaction within one cent.
	ExactMatch ReconciliationState = "exact_match"
	// Under means more items are needed (e.g. tax or tip not added yet).
	Under ReconciliationState = "under"
	// Over means the items exceed the transaction and need correcting.
	Over ReconciliationState = "over"
)

// Reconciliation is the derived items-vs-transaction comparison.
type Reconciliation struct {
	ItemsTotal decimal.Decimal
	// Difference is transactionTotal - ItemsTotal.
	Difference decimal.Decimal
	State      ReconciliationState
}

// Patch is a partial update for an item. Nil fields are left unchanged.
type Patch struct {
	Name      *string
	Quantity  *int
	UnitPrice *decimal.Decimal
}

// Candidate is an item proposed by receipt recognition or manual entry.
type Candidate struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// Add appends item with a fresh ID when it has none. An ID already in items
// fails with ErrDuplicateItem. Assignees are treated as a set.
func Add(items []models.ReceiptItem, item models.ReceiptItem) ([]models.ReceiptItem, error) {
	if err := check(item.Name, item.Quantity); err != nil {
		return nil, err
	}
	item = item.Clone()
	item.Name = strings.TrimSpace(item.Name)
	item.AssignedTo = distinct(item.AssignedTo)
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	for _, it := range items {
		if it.ID == item.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
		}
	}
	out := clone(items)
	return append(out, item), nil
}

// Update applies patch to the item with the given ID.
func Update(items []models.ReceiptItem, id string, patch Patch) ([]models.ReceiptItem, error) {
	return mapItem(items, id, func(it *models.ReceiptItem) error {
		name, qty := it.Name, it.Quantity
		if patch.Name != nil {
			name = strings.TrimSpace(*patch.Name)
		}
		if patch.Quantity != nil {
			qty = *patch.Quantity
		}
		if err := check(name, qty); err != nil {
			return err
		}
		it.Name, it.Quantity = name, qty
		if patch.UnitPrice != nil {
			it.UnitPrice = *patch.UnitPrice
		}
		return nil
	})
}

// Remove drops the item with the given ID.
func Remove(items []models.ReceiptItem, id string) ([]models.ReceiptItem, error) {
	out := make([]models.ReceiptItem, 0, len(items))
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		out = append(out, it.Clone())
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return out, nil
}

// Assign adds participantID to the item's assignees. Assigning twice is a no-op.
func Assign(items []models.ReceiptItem, id, participantID string) ([]models.ReceiptItem, error) {
	return mapItem(items, id, func(it *models.ReceiptItem) error {
		for _, p := range it.AssignedTo {
			if p == participantID {
				return nil
			}
		}
		it.AssignedTo = append(it.AssignedTo, participantID)
		return nil
	})
}

// Unassign removes participantID from the item's assignees.
func Unassign(items []models.ReceiptItem, id, participantID string) ([]models.ReceiptItem, error) {
	return mapItem(items, id, func(it *models.ReceiptItem) error {
		it.AssignedTo = without(it.AssignedTo, participantID)
		return nil
	})
}

// RemoveParticipant unassigns participantID from every item, used when a
// participant leaves the split before it is saved.
func RemoveParticipant(items []models.ReceiptItem, participantID string) []models.ReceiptItem {
	out := clone(items)
	for i := range out {
		out[i].AssignedTo = without(out[i].AssignedTo, participantID)
	}
	return out
}

// FromCandidates feeds recognized items through Add one at a time, each with
// no assignees.
func FromCandidates(items []models.ReceiptItem, candidates []Candidate) ([]models.ReceiptItem, error) {
	out := items
	for i, c := range candidates {
		qty := c.Quantity
		if qty == 0 {
			qty = 1
		}
		var err error
		out, err = Add(out, models.ReceiptItem{Name: c.Name, Quantity: qty, UnitPrice: c.Price})
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
	}
	return clone(out), nil
}

// Total sums quantity × unit price over all items.
func Total(items []models.ReceiptItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Reconcile compares the items total against the transaction total.
func Reconcile(transactionTotal decimal.Decimal, items []models.ReceiptItem) Reconciliation {
	itemsTotal := Total(items)
	diff := transactionTotal.Sub(itemsTotal)

	state := ExactMatch
	switch {
	case money.WithinEpsilon(diff, decimal.Zero):
	case diff.IsPositive():
		state = Under
	default:
		state = Over
	}

	return Reconciliation{ItemsTotal: itemsTotal, Difference: diff, State: state}
}

// AllAssigned reports whether every item has at least one assignee.
// An empty receipt is trivially assigned.
func AllAssigned(items []models.ReceiptItem) bool {
	return len(Unassigned(items)) == 0
}

// Unassigned returns the items nobody is sharing.
func Unassigned(items []models.ReceiptItem) []models.ReceiptItem {
	var out []models.ReceiptItem
	for _, it := range items {
		if len(it.AssignedTo) == 0 {
			out = append(out, it)
		}
	}
	return out
}

// ItemsFor returns the IDs of the items participantID shares.
func ItemsFor(items []models.ReceiptItem, participantID string) []string {
	var ids []string
	for _, it := range items {
		for _, p := range it.AssignedTo {
			if p == participantID {
				ids = append(ids, it.ID)
				break
			}
		}
	}
	return ids
}

func check(name string, qty int) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if qty < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}
	return nil
}

func mapItem(items []models.ReceiptItem, id string, fn func(*models.ReceiptItem) error) ([]models.ReceiptItem, error) {
	out := clone(items)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if err := fn(&out[i]); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

func clone(items []models.ReceiptItem) []models.ReceiptItem {
	out := make([]models.ReceiptItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func without(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// distinct drops repeated IDs, keeping first occurrences in order.
func distinct(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
