package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.TransactionServiceHandler = (*TransactionService)(nil)

const dateLayout = "2006-01-02"

// TransactionService records transactions entered by hand or imported from a bank feed.
type TransactionService struct {
	store  storage.TransactionStore
	logger *slog.Logger
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(store storage.TransactionStore, logger *slog.Logger) *TransactionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionService{store: store, logger: logger}
}

// CreateTransaction stores a manually entered transaction.
func (s *TransactionService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	tx := &models.Transaction{
		OwnerID:     userID,
		Amount:      money.Round(req.Msg.Amount),
		Merchant:    strings.TrimSpace(req.Msg.Merchant),
		Date:        req.Msg.Date,
		Category:    req.Msg.Category,
		Description: req.Msg.Description,
		Source:      models.SourceManual,
	}
	if err := validateTransaction(tx.Amount, tx.Merchant, tx.Date); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		s.logger.Error("CreateTransaction failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Transaction created", "transaction_id", tx.ID, "user_id", userID)
	return connect.NewResponse(&api.CreateTransactionResponse{Transaction: toAPITransaction(tx)}), nil
}

// ImportTransactions stores a bank-feed batch. Rows already imported (same
// external ID) are skipped and counted.
func (s *TransactionService) ImportTransactions(ctx context.Context, req *connect.Request[api.ImportTransactionsRequest]) (*connect.Response[api.ImportTransactionsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	txs := make([]*models.Transaction, 0, len(req.Msg.Transactions))
	for i, in := range req.Msg.Transactions {
		tx := &models.Transaction{
			OwnerID:     userID,
			Amount:      money.Round(in.Amount),
			Merchant:    strings.TrimSpace(in.Merchant),
			Date:        in.Date,
			Category:    in.Category,
			Description: in.Description,
			Source:      models.SourceImport,
			ExternalID:  in.ExternalID,
		}
		if in.ExternalID == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("transaction %d: external_id is required", i))
		}
		if err := validateTransaction(tx.Amount, tx.Merchant, tx.Date); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("transaction %d: %w", i, err))
		}
		txs = append(txs, tx)
	}

	imported, err := s.store.ImportTransactions(ctx, txs)
	if err != nil {
		s.logger.Error("ImportTransactions failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Transactions imported", "user_id", userID, "imported", imported, "skipped", len(txs)-imported)
	return connect.NewResponse(&api.ImportTransactionsResponse{
		Imported: imported,
		Skipped:  len(txs) - imported,
	}), nil
}

// ListTransactions returns the caller's transactions, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		s.logger.Error("ListTransactions failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]api.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = toAPITransaction(tx)
	}
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: out}), nil
}

func validateTransaction(amount decimal.Decimal, merchant, date string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if merchant == "" {
		return fmt.Errorf("merchant is required")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD, got %q", date)
	}
	return nil
}

func toAPITransaction(tx *models.Transaction) api.Transaction {
	return api.Transaction{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Merchant:    tx.Merchant,
		Date:        tx.Date,
		Category:    tx.Category,
		Description: tx.Description,
		Source:      string(tx.Source),
		ExternalID:  tx.ExternalID,
		CreatedAt:   tx.CreatedAt,
	}
}
