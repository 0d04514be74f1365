package models

// SettlementStatus is the payment state of a single share.
type SettlementStatus string

const (
	StatusPending SettlementStatus = "pending"
	StatusPaid    SettlementStatus = "paid"
)

// Valid reports whether s is pending or paid.
func (s SettlementStatus) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// AggregateStatus is the split-level roll-up of share statuses.
// It is always derived from the shares and never persisted.
type AggregateStatus string

const (
	AggregateAllSettled  AggregateStatus = "all_settled"
	AggregateSettledByMe AggregateStatus = "settled_by_me"
	AggregatePending     AggregateStatus = "pending"
)

// Valid reports whether s is one of the derived split statuses.
func (s AggregateStatus) Valid() bool {
	switch s {
	case AggregateAllSettled, AggregateSettledByMe, AggregatePending:
		return true
	}
	return false
}
