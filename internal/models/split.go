package models

import "github.com/shopspring/decimal"

// SplitMethod selects which allocation strategy produced a split's shares.
type SplitMethod string

const (
	MethodEqual      SplitMethod = "equal"
	MethodPercentage SplitMethod = "percentage"
	MethodCustom     SplitMethod = "custom"
	MethodItemized   SplitMethod = "itemized"
)

// Valid reports whether m is one of the four known methods.
func (m SplitMethod) Valid() bool {
	switch m {
	case MethodEqual, MethodPercentage, MethodCustom, MethodItemized:
		return true
	}
	return false
}

// Split is a saved allocation of one transaction among participants.
// Once created, the allocation never changes; only share statuses do.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string

	// OwnerID is the user who created the split and may delete it.
	OwnerID string

	// TransactionID references the transaction being split.
	TransactionID string

	// Method is the allocation strategy used.
	Method SplitMethod

	// Total is the transaction amount at the time of splitting.
	Total decimal.Decimal

	// Shares holds one entry per participant, in selection order.
	Shares []Share

	// Items is the receipt snapshot. Only itemized splits carry items.
	Items []ReceiptItem

	// CreatedAt is the Unix timestamp when the split was created.
	CreatedAt int64
}

// Participants returns the participant IDs in share order.
func (s *Split) Participants() []string {
	ids := make([]string, len(s.Shares))
	for i, sh := range s.Shares {
		ids[i] = sh.ParticipantID
	}
	return ids
}

// ShareFor returns the share belonging to participantID.
func (s *Split) ShareFor(participantID string) (Share, bool) {
	for _, sh := range s.Shares {
		if sh.ParticipantID == participantID {
			return sh, true
		}
	}
	return Share{}, false
}

// Share is one participant's portion of a split.
type Share struct {
	// ParticipantID is the user ID of the participant.
	ParticipantID string

	// Amount is what this participant owes, in major units.
	Amount decimal.Decimal

	// Percentage is the participant's portion of the total, 0-100.
	Percentage decimal.Decimal

	// Status tracks whether the participant has paid.
	Status SettlementStatus
}

// ReceiptItem is a single line on a receipt.
// Items can be shared among multiple participants.
type ReceiptItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the description printed on the receipt (e.g., "Pizza", "Coupon").
	Name string

	// Quantity is the number of units, at least 1.
	Quantity int

	// UnitPrice is the price per unit. Negative prices are discounts.
	UnitPrice decimal.Decimal

	// AssignedTo lists the participant IDs sharing this item.
	// The line total is divided evenly among them.
	AssignedTo []string
}

// LineTotal returns Quantity × UnitPrice.
func (i ReceiptItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Clone returns a deep copy so that callers can't mutate the assignment slice.
func (i ReceiptItem) Clone() ReceiptItem {
	i.AssignedTo = append([]string(nil), i.AssignedTo...)
	return i
}
