package calculator

import "errors"

var (
	// ErrIncompleteAllocation means shares don't add up to the total (or to 100%).
	ErrIncompleteAllocation = errors.New("incomplete allocation")
	// ErrUnassignedItem means an itemized split has a receipt item nobody is sharing.
	ErrUnassignedItem = errors.New("receipt item has no assignees")
	// ErrNoParticipants is a caller bug: allocations need at least one participant.
	ErrNoParticipants = errors.New("must have at least one participant")
	// ErrDuplicateParticipant means the same ID appears twice in the participant set.
	ErrDuplicateParticipant = errors.New("duplicate participant")
	// ErrUnknownAssignee means an item is assigned to someone outside the participant set.
	ErrUnknownAssignee = errors.New("item assigned to non-participant")
	// ErrNonPositiveTotal means the transaction amount is zero or negative.
	ErrNonPositiveTotal = errors.New("total must be positive")
	// ErrUnknownMethod means the split method is not one of the four strategies.
	ErrUnknownMethod = errors.New("unknown split method")
	// ErrPercentageOutOfRange means an entered percentage is below 0 or above 100.
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	// ErrNegativeAmount means an entered custom amount is below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")
)
