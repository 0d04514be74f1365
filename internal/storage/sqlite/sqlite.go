// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
//
// The pool is limited to a single connection, so every write transaction is
// serialized. A status update that races a delete of the same split therefore
// runs entirely before or entirely after it.
type SQLiteStore struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for health checks.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// CreateSplit persists a new split with its shares and receipt snapshot.
func (s *SQLiteStore) CreateSplit(ctx context.Context, split *models.Split) error {
	// Generate IDs if not set
	if split.ID == "" {
		split.ID = uuid.New().String()
	}
	if split.CreatedAt == 0 {
		split.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO splits (id, owner_id, transaction_id, method, total, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		split.ID, split.OwnerID, split.TransactionID, string(split.Method), split.Total, split.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}

	for i := range split.Shares {
		sh := &split.Shares[i]
		if sh.Status == "" {
			sh.Status = models.StatusPending
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO split_participants (split_id, participant_id, position, amount, percentage, status)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			split.ID, sh.ParticipantID, i, sh.Amount, sh.Percentage, string(sh.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i := range split.Items {
		item := &split.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO receipt_items (id, split_id, position, name, quantity, unit_price) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, split.ID, i, item.Name, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt item: %w", err)
		}

		for j, participant := range item.AssignedTo {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, participant_id, position) VALUES (?, ?, ?)",
				item.ID, participant, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSplit retrieves a split by ID, including shares and receipt items.
func (s *SQLiteStore) GetSplit(ctx context.Context, splitID string) (*models.Split, error) {
	return loadSplit(ctx, s.db, splitID)
}

// ListSplitsByOwner returns the splits created by ownerID, newest first.
func (s *SQLiteStore) ListSplitsByOwner(ctx context.Context, ownerID string) ([]*models.Split, error) {
	ids, err := s.splitIDs(ctx,
		"SELECT id FROM splits WHERE owner_id = ? ORDER BY created_at DESC, id",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits by owner: %w", err)
	}
	return s.loadSplits(ctx, ids)
}

// ListSplitsByParticipant returns the splits participantID has a share in, newest first.
func (s *SQLiteStore) ListSplitsByParticipant(ctx context.Context, participantID string) ([]*models.Split, error) {
	ids, err := s.splitIDs(ctx,
		`SELECT s.id FROM splits s
		 JOIN split_participants p ON p.split_id = s.id
		 WHERE p.participant_id = ?
		 ORDER BY s.created_at DESC, s.id`,
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits by participant: %w", err)
	}
	return s.loadSplits(ctx, ids)
}

// DeleteSplit removes a split together with its shares, items and assignments.
func (s *SQLiteStore) DeleteSplit(ctx context.Context, splitID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := splitExists(ctx, tx, splitID); err != nil {
		return err
	}

	stmts := []string{
		"DELETE FROM item_assignments WHERE item_id IN (SELECT id FROM receipt_items WHERE split_id = ?)",
		"DELETE FROM receipt_items WHERE split_id = ?",
		"DELETE FROM split_participants WHERE split_id = ?",
		"DELETE FROM splits WHERE id = ?",
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, splitID); err != nil {
			return fmt.Errorf("failed to delete split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) splitIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) loadSplits(ctx context.Context, ids []string) ([]*models.Split, error) {
	splits := make([]*models.Split, 0, len(ids))
	for _, id := range ids {
		split, err := loadSplit(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}
	return splits, nil
}

func splitExists(ctx context.Context, q querier, splitID string) error {
	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM splits WHERE id = ?", splitID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", storage.ErrSplitNotFound, splitID)
	}
	if err != nil {
		return fmt.Errorf("failed to check split existence: %w", err)
	}
	return nil
}

// loadSplit reads a split and its children. Each result set is fully drained
// before the next query starts because the pool has a single connection.
func loadSplit(ctx context.Context, q querier, splitID string) (*models.Split, error) {
	split := &models.Split{}
	var method string
	err := q.QueryRowContext(ctx,
		"SELECT id, owner_id, transaction_id, method, total, created_at FROM splits WHERE id = ?",
		splitID,
	).Scan(&split.ID, &split.OwnerID, &split.TransactionID, &method, &split.Total, &split.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrSplitNotFound, splitID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	split.Method = models.SplitMethod(method)

	if split.Shares, err = loadShares(ctx, q, splitID); err != nil {
		return nil, err
	}
	if split.Items, err = loadItems(ctx, q, splitID); err != nil {
		return nil, err
	}
	return split, nil
}

func loadShares(ctx context.Context, q querier, splitID string) ([]models.Share, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT participant_id, amount, percentage, status FROM split_participants WHERE split_id = ? ORDER BY position",
		splitID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var sh models.Share
		var status string
		if err := rows.Scan(&sh.ParticipantID, &sh.Amount, &sh.Percentage, &status); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		sh.Status = models.SettlementStatus(status)
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return shares, nil
}

func loadItems(ctx context.Context, q querier, splitID string) ([]models.ReceiptItem, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, quantity, unit_price FROM receipt_items WHERE split_id = ? ORDER BY position",
		splitID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt items: %w", err)
	}

	var items []models.ReceiptItem
	index := make(map[string]int)
	for rows.Next() {
		var item models.ReceiptItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipt items: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	assignRows, err := q.QueryContext(ctx,
		`SELECT a.item_id, a.participant_id FROM item_assignments a
		 JOIN receipt_items i ON a.item_id = i.id
		 WHERE i.split_id = ?
		 ORDER BY a.item_id, a.position`,
		splitID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var itemID, participant string
		if err := assignRows.Scan(&itemID, &participant); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if i, ok := index[itemID]; ok {
			items[i].AssignedTo = append(items[i].AssignedTo, participant)
		}
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return items, nil
}
