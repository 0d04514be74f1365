package models

import "github.com/shopspring/decimal"

// TransactionSource records how a transaction entered the system.
type TransactionSource string

const (
	SourceManual TransactionSource = "manual"
	SourceImport TransactionSource = "import"
)

// Transaction is an immutable record of money that moved.
// The split engine only ever reads it.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// OwnerID is the user the transaction belongs to.
	OwnerID string

	// Amount is the positive amount that moved.
	Amount decimal.Decimal

	Merchant    string
	Date        string // YYYY-MM-DD
	Category    string
	Description string

	// Source is manual or import.
	Source TransactionSource

	// ExternalID is the bank feed's transaction ID, used to skip duplicates on re-import.
	ExternalID string

	// CreatedAt is the Unix timestamp when the record was stored.
	CreatedAt int64
}
