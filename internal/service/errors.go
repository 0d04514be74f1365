package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/draft"
	"github.com/mmynk/splitledger/internal/receipt"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errAuthRequired = errors.New("authentication required")
	errNotVisible   = errors.New("you must own or participate in this split")
	errOwnerOnly    = errors.New("only the split owner can do this")
)

// toConnectError maps domain errors onto Connect codes. Anything unrecognized
// is treated as a server fault.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, storage.ErrSplitNotFound),
		errors.Is(err, storage.ErrParticipantNotFound),
		errors.Is(err, storage.ErrTransactionNotFound),
		errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, receipt.ErrItemNotFound):
		return connect.NewError(connect.CodeNotFound, err)

	case errors.Is(err, calculator.ErrIncompleteAllocation),
		errors.Is(err, calculator.ErrUnassignedItem):
		return connect.NewError(connect.CodeFailedPrecondition, err)

	case errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrDuplicateParticipant),
		errors.Is(err, calculator.ErrUnknownAssignee),
		errors.Is(err, calculator.ErrNonPositiveTotal),
		errors.Is(err, calculator.ErrUnknownMethod),
		errors.Is(err, calculator.ErrPercentageOutOfRange),
		errors.Is(err, calculator.ErrNegativeAmount),
		errors.Is(err, receipt.ErrDuplicateItem),
		errors.Is(err, draft.ErrNotParticipant),
		errors.Is(err, receipt.ErrInvalidQuantity),
		errors.Is(err, receipt.ErrEmptyName),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail):
		return connect.NewError(connect.CodeInvalidArgument, err)

	case errors.Is(err, settlement.ErrUnauthorized),
		errors.Is(err, errNotVisible),
		errors.Is(err, errOwnerOnly):
		return connect.NewError(connect.CodePermissionDenied, err)

	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, errAuthRequired):
		return connect.NewError(connect.CodeUnauthenticated, err)
	}

	return connect.NewError(connect.CodeInternal, err)
}
