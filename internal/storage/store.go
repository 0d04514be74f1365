// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrSplitNotFound       = errors.New("split not found")
	ErrParticipantNotFound = errors.New("participant not found in split")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
)

// Store defines the interface for split, transaction and user storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Saved allocations are immutable. Only share statuses change.
type Store interface {
	SplitStore
	TransactionStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// SplitStore persists splits with their shares and receipt snapshot.
type SplitStore interface {
	// CreateSplit persists a new split with its shares and items atomically.
	// The split.ID field will be populated by the store.
	CreateSplit(ctx context.Context, split *models.Split) error

	// GetSplit retrieves a split by ID. Returns ErrSplitNotFound if missing.
	GetSplit(ctx context.Context, splitID string) (*models.Split, error)

	// ListSplitsByOwner returns the splits ownerID created, newest first.
	ListSplitsByOwner(ctx context.Context, ownerID string) ([]*models.Split, error)

	// ListSplitsByParticipant returns the splits participantID has a share in, newest first.
	ListSplitsByParticipant(ctx context.Context, participantID string) ([]*models.Split, error)

	// DeleteSplit removes a split and all its shares and items in one transaction.
	// Returns ErrSplitNotFound if missing.
	DeleteSplit(ctx context.Context, splitID string) error

	// UpdateParticipantStatus sets one share's settlement status.
	// Returns ErrSplitNotFound if the split is gone and ErrParticipantNotFound
	// if the participant has no share in it.
	UpdateParticipantStatus(ctx context.Context, splitID, participantID string, status models.SettlementStatus) error
}

// TransactionStore persists imported and manually entered transactions.
type TransactionStore interface {
	// CreateTransaction persists a manual transaction and populates its ID.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// ImportTransactions stores a bank-feed batch, skipping any transaction
	// whose ExternalID already exists for the owner. Returns the number stored.
	ImportTransactions(ctx context.Context, txs []*models.Transaction) (int, error)

	// GetTransaction retrieves a transaction by ID. Returns ErrTransactionNotFound if missing.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// ListTransactions returns ownerID's transactions, newest date first.
	ListTransactions(ctx context.Context, ownerID string) ([]*models.Transaction, error)
}

// UserStore persists user accounts. Lookups return nil, nil when not found.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}
