// Package draft holds the state of a split while it is being configured.
//
// A Draft is a value. Each user action is an Action passed to Reduce, which
// returns the next Draft and never modifies the previous one. Build turns a
// finished draft into an immutable models.Split after re-validating it.
package draft

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/receipt"
)

// ErrNotParticipant means an action referenced someone outside the participant set.
var ErrNotParticipant = errors.New("not a participant in this split")

// Draft is the in-progress configuration of a split.
type Draft struct {
	OwnerID       string
	TransactionID string
	Total         decimal.Decimal

	Method       models.SplitMethod
	Participants []string

	// Percentages and Amounts hold user input for the percentage and custom methods.
	Percentages map[string]decimal.Decimal
	Amounts     map[string]decimal.Decimal

	// Items is the receipt for the itemized method.
	Items []models.ReceiptItem
}

// New starts a draft for splitting tx, owned by ownerID, using the equal method.
func New(tx *models.Transaction, ownerID string) Draft {
	return Draft{
		OwnerID:       ownerID,
		TransactionID: tx.ID,
		Total:         tx.Amount,
		Method:        models.MethodEqual,
		Percentages:   map[string]decimal.Decimal{},
		Amounts:       map[string]decimal.Decimal{},
	}
}

// Action is one user edit to a draft.
type Action interface {
	apply(d Draft) (Draft, error)
}

// Reduce applies a to d and returns the new draft. On error, d is unchanged
// and should be kept.
func Reduce(d Draft, a Action) (Draft, error) {
	next, err := a.apply(d.clone())
	if err != nil {
		return d, err
	}
	return next, nil
}

// ReduceAll applies actions in order, stopping at the first error.
func ReduceAll(d Draft, actions ...Action) (Draft, error) {
	for i, a := range actions {
		var err error
		d, err = Reduce(d, a)
		if err != nil {
			return d, fmt.Errorf("action %d (%T): %w", i, a, err)
		}
	}
	return d, nil
}

// Preview is the live allocation shown while configuring.
type Preview struct {
	Shares []models.Share

	// Err is nil when the draft can be saved as is.
	Err error

	// Reconciliation compares receipt items with the total (itemized only).
	Reconciliation *receipt.Reconciliation
}

// Preview computes the current allocation and whether it passes the save gate.
func (d Draft) Preview() Preview {
	var p Preview
	if d.Method == models.MethodItemized {
		r := receipt.Reconcile(d.Total, d.Items)
		p.Reconciliation = &r
	}

	shares, err := calculator.Allocate(d.Method, d.Total, d.Participants, d.input())
	if err != nil {
		p.Err = err
		return p
	}
	p.Shares = shares
	p.Err = calculator.ValidateAllocation(d.Method, d.Total, shares, d.Items)
	return p
}

// Build validates the draft and returns the split to persist. The store
// assigns the ID.
func (d Draft) Build(now time.Time) (*models.Split, error) {
	if !d.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", calculator.ErrUnknownMethod, d.Method)
	}

	shares, err := calculator.Allocate(d.Method, d.Total, d.Participants, d.input())
	if err != nil {
		return nil, err
	}
	if err := calculator.ValidateAllocation(d.Method, d.Total, shares, d.Items); err != nil {
		return nil, err
	}

	split := &models.Split{
		OwnerID:       d.OwnerID,
		TransactionID: d.TransactionID,
		Method:        d.Method,
		Total:         d.Total,
		Shares:        shares,
		CreatedAt:     now.Unix(),
	}
	if d.Method == models.MethodItemized {
		for _, it := range d.Items {
			split.Items = append(split.Items, it.Clone())
		}
	}
	return split, nil
}

func (d Draft) input() calculator.Input {
	return calculator.Input{
		Percentages: d.Percentages,
		Amounts:     d.Amounts,
		Items:       d.Items,
	}
}

func (d Draft) isParticipant(id string) bool {
	for _, p := range d.Participants {
		if p == id {
			return true
		}
	}
	return false
}

func (d Draft) clone() Draft {
	out := d
	out.Participants = append([]string(nil), d.Participants...)
	out.Percentages = make(map[string]decimal.Decimal, len(d.Percentages))
	for k, v := range d.Percentages {
		out.Percentages[k] = v
	}
	out.Amounts = make(map[string]decimal.Decimal, len(d.Amounts))
	for k, v := range d.Amounts {
		out.Amounts[k] = v
	}
	out.Items = make([]models.ReceiptItem, len(d.Items))
	for i, it := range d.Items {
		out.Items[i] = it.Clone()
	}
	return out
}
