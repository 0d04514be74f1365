package draft

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/receipt"
)

// SetParticipants replaces the participant set. Input for anyone no longer in
// the set is dropped, including their item assignments.
type SetParticipants struct {
	IDs []string
}

func (a SetParticipants) apply(d Draft) (Draft, error) {
	seen := make(map[string]bool, len(a.IDs))
	for _, id := range a.IDs {
		if seen[id] {
			return d, fmt.Errorf("%w: %q", calculator.ErrDuplicateParticipant, id)
		}
		seen[id] = true
	}
	for _, old := range d.Participants {
		if !seen[old] {
			d = d.dropParticipant(old)
		}
	}
	d.Participants = append([]string(nil), a.IDs...)
	return d, nil
}

// ToggleParticipant adds id to the set, or removes it if already present.
// Including yourself in a split is a toggle of your own ID.
type ToggleParticipant struct {
	ID string
}

func (a ToggleParticipant) apply(d Draft) (Draft, error) {
	if d.isParticipant(a.ID) {
		d = d.dropParticipant(a.ID)
		out := d.Participants[:0]
		for _, p := range d.Participants {
			if p != a.ID {
				out = append(out, p)
			}
		}
		d.Participants = out
		return d, nil
	}
	d.Participants = append(d.Participants, a.ID)
	return d, nil
}

// SetMethod switches the allocation method. Entered input for other methods is kept.
type SetMethod struct {
	Method models.SplitMethod
}

func (a SetMethod) apply(d Draft) (Draft, error) {
	if !a.Method.Valid() {
		return d, fmt.Errorf("%w: %q", calculator.ErrUnknownMethod, a.Method)
	}
	d.Method = a.Method
	return d, nil
}

// SetPercentage records a participant's percentage for the percentage method.
type SetPercentage struct {
	ParticipantID string
	Percentage    decimal.Decimal
}

func (a SetPercentage) apply(d Draft) (Draft, error) {
	if !d.isParticipant(a.ParticipantID) {
		return d, fmt.Errorf("%w: %q", ErrNotParticipant, a.ParticipantID)
	}
	if err := calculator.CheckPercentage(a.Percentage); err != nil {
		return d, err
	}
	d.Percentages[a.ParticipantID] = a.Percentage
	return d, nil
}

// SetAmount records a participant's amount for the custom method.
type SetAmount struct {
	ParticipantID string
	Amount        decimal.Decimal
}

func (a SetAmount) apply(d Draft) (Draft, error) {
	if !d.isParticipant(a.ParticipantID) {
		return d, fmt.Errorf("%w: %q", ErrNotParticipant, a.ParticipantID)
	}
	if err := calculator.CheckAmount(a.Amount); err != nil {
		return d, err
	}
	d.Amounts[a.ParticipantID] = a.Amount
	return d, nil
}

// AddItem appends a receipt item.
type AddItem struct {
	Item models.ReceiptItem
}

func (a AddItem) apply(d Draft) (Draft, error) {
	for _, id := range a.Item.AssignedTo {
		if !d.isParticipant(id) {
			return d, fmt.Errorf("%w: %q", ErrNotParticipant, id)
		}
	}
	items, err := receipt.Add(d.Items, a.Item)
	if err != nil {
		return d, err
	}
	d.Items = items
	return d, nil
}

// UpdateItem patches a receipt item's name, quantity or price.
type UpdateItem struct {
	ID    string
	Patch receipt.Patch
}

func (a UpdateItem) apply(d Draft) (Draft, error) {
	items, err := receipt.Update(d.Items, a.ID, a.Patch)
	if err != nil {
		return d, err
	}
	d.Items = items
	return d, nil
}

// RemoveItem deletes a receipt item.
type RemoveItem struct {
	ID string
}

func (a RemoveItem) apply(d Draft) (Draft, error) {
	items, err := receipt.Remove(d.Items, a.ID)
	if err != nil {
		return d, err
	}
	d.Items = items
	return d, nil
}

// AssignItem adds a participant to an item.
type AssignItem struct {
	ItemID        string
	ParticipantID string
}

func (a AssignItem) apply(d Draft) (Draft, error) {
	if !d.isParticipant(a.ParticipantID) {
		return d, fmt.Errorf("%w: %q", ErrNotParticipant, a.ParticipantID)
	}
	items, err := receipt.Assign(d.Items, a.ItemID, a.ParticipantID)
	if err != nil {
		return d, err
	}
	d.Items = items
	return d, nil
}

// UnassignItem removes a participant from an item.
type UnassignItem struct {
	ItemID        string
	ParticipantID string
}

func (a UnassignItem) apply(d Draft) (Draft, error) {
	items, err := receipt.Unassign(d.Items, a.ItemID, a.ParticipantID)
	if err != nil {
		return d, err
	}
	d.Items = items
	return d, nil
}

func (d Draft) dropParticipant(id string) Draft {
	delete(d.Percentages, id)
	delete(d.Amounts, id)
	d.Items = receipt.RemoveParticipant(d.Items, id)
	return d
}

// ImportCandidates appends recognized receipt lines, unassigned.
type ImportCandidates struct {
	Candidates []receipt.Candidate
}

func (a ImportCandidates) apply(d Draft) (Draft, error) {
	items, err := receipt.FromCandidates(d.Items, a.Candidates)
	if err != nil {
		return d, err
	}
	d.Items = items
	return d, nil
}
