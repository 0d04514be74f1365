package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/receipt"
)

// IsAmountAllocationValid reports whether the share amounts add up to total
// within one cent.
func IsAmountAllocationValid(shares []models.Share, total decimal.Decimal) bool {
	return money.WithinEpsilon(sumAmounts(shares), total)
}

// IsPercentageAllocationValid reports whether the share percentages add up to
// 100 within 0.01.
func IsPercentageAllocationValid(shares []models.Share) bool {
	return money.WithinEpsilon(sumPercentages(shares), money.Hundred)
}

// ValidateAllocation is the save gate. It re-checks an allocation against the
// rules of its method and fails closed:
//
//   - equal: always valid (computed, not entered)
//   - percentage: percentages sum to 100 and amounts sum to total
//   - custom: amounts sum to total
//   - itemized: at least one item and every item assigned
func ValidateAllocation(method models.SplitMethod, total decimal.Decimal, shares []models.Share, items []models.ReceiptItem) error {
	if len(shares) == 0 {
		return ErrNoParticipants
	}

	switch method {
	case models.MethodEqual:
		return nil
	case models.MethodPercentage:
		if !IsPercentageAllocationValid(shares) {
			return fmt.Errorf("%w: percentages sum to %s, want 100", ErrIncompleteAllocation, sumPercentages(shares))
		}
		if !IsAmountAllocationValid(shares, total) {
			return fmt.Errorf("%w: amounts sum to %s, want %s", ErrIncompleteAllocation, money.Format(sumAmounts(shares)), money.Format(total))
		}
		return nil
	case models.MethodCustom:
		if !IsAmountAllocationValid(shares, total) {
			return fmt.Errorf("%w: amounts sum to %s, want %s", ErrIncompleteAllocation, money.Format(sumAmounts(shares)), money.Format(total))
		}
		return nil
	case models.MethodItemized:
		if len(items) == 0 {
			return fmt.Errorf("%w: itemized split has no items", ErrIncompleteAllocation)
		}
		if !receipt.AllAssigned(items) {
			return fmt.Errorf("%w: %d item(s) unassigned", ErrUnassignedItem, len(receipt.Unassigned(items)))
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// RejectionReason maps a validation error to a short label for metrics and logs.
func RejectionReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnassignedItem):
		return "unassigned_item"
	case errors.Is(err, ErrIncompleteAllocation):
		return "incomplete_allocation"
	case errors.Is(err, ErrNoParticipants):
		return "no_participants"
	case errors.Is(err, ErrDuplicateParticipant):
		return "duplicate_participant"
	case errors.Is(err, ErrUnknownAssignee):
		return "unknown_assignee"
	case errors.Is(err, ErrNonPositiveTotal):
		return "non_positive_total"
	case errors.Is(err, ErrUnknownMethod):
		return "unknown_method"
	case errors.Is(err, ErrPercentageOutOfRange), errors.Is(err, ErrNegativeAmount):
		return "out_of_range"
	default:
		return "other"
	}
}

func sumAmounts(shares []models.Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func sumPercentages(shares []models.Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Percentage)
	}
	return total
}
