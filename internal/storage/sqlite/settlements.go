package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// UpdateParticipantStatus sets one share's settlement status. The existence
// check and the write share a transaction so a concurrent delete of the split
// surfaces as ErrSplitNotFound rather than a silent no-op.
func (s *SQLiteStore) UpdateParticipantStatus(ctx context.Context, splitID, participantID string, status models.SettlementStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := splitExists(ctx, tx, splitID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE split_participants SET status = ? WHERE split_id = ? AND participant_id = ?",
		string(status), splitID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s in split %s", storage.ErrParticipantNotFound, participantID, splitID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
