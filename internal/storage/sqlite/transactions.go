package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const transactionColumns = "id, owner_id, amount, merchant, date, category, description, source, external_id, created_at"

// CreateTransaction persists a manually entered transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.Source == "" {
		t.Source = models.SourceManual
	}
	return insertTransaction(ctx, s.db, t)
}

// ImportTransactions stores a bank-feed batch in one transaction. Rows whose
// ExternalID is already known for the owner are skipped.
func (s *SQLiteStore) ImportTransactions(ctx context.Context, txs []*models.Transaction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	imported := 0
	for _, t := range txs {
		t.Source = models.SourceImport
		if t.ExternalID != "" {
			var exists int
			err := tx.QueryRowContext(ctx,
				"SELECT 1 FROM transactions WHERE owner_id = ? AND external_id = ?",
				t.OwnerID, t.ExternalID,
			).Scan(&exists)
			if err == nil {
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return 0, fmt.Errorf("failed to check external id: %w", err)
			}
		}
		if err := insertTransaction(ctx, tx, t); err != nil {
			return 0, err
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return imported, nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns the owner's transactions, newest date first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, ownerID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE owner_id = ? ORDER BY date DESC, created_at DESC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, db execer, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}

	var externalID interface{} = nil
	if t.ExternalID != "" {
		externalID = t.ExternalID
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.OwnerID, t.Amount, t.Merchant, t.Date, t.Category, t.Description,
		string(t.Source), externalID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	var source string
	var externalID sql.NullString
	err := row.Scan(&t.ID, &t.OwnerID, &t.Amount, &t.Merchant, &t.Date, &t.Category,
		&t.Description, &source, &externalID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Source = models.TransactionSource(source)
	if externalID.Valid {
		t.ExternalID = externalID.String
	}
	return t, nil
}
