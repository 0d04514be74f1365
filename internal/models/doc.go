// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - Transaction: money that moved, imported from a bank feed or entered by hand
//   - User: a registered account; participants in a split are referenced by user ID
//   - Split: one saved allocation of a transaction's cost among participants
//   - Share: one participant's amount, percentage and settlement status in a split
//   - ReceiptItem: a receipt line used by itemized splits
//
// # Design Principles
//
// 1. **Money is fixed point**: every amount is a decimal.Decimal, never a float
// 2. **Splits are immutable**: re-splitting creates a new Split; only share status changes
// 3. **Derived over stored**: the split-level status is computed from shares on read
// 4. **IDs, not pointers**: relationships are ID strings to avoid circular references
package models
