package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/directory"
	"github.com/mmynk/splitledger/internal/draft"
	"github.com/mmynk/splitledger/internal/export"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/receipt"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.SplitServiceHandler = (*SplitService)(nil)

var errTransactionOwner = errors.New("you can only split your own transactions")

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SplitService implements the Connect SplitService.
type SplitService struct {
	store  storage.Store
	dir    directory.Directory
	logger *slog.Logger
	now    func() time.Time
}

// NewSplitService creates a new SplitService with the given storage backend
// and participant directory.
func NewSplitService(store storage.Store, dir directory.Directory, logger *slog.Logger) *SplitService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SplitService{store: store, dir: dir, logger: logger, now: time.Now}
}

// PreviewSplit computes the allocation for a configuration without saving it.
// An allocation that would be rejected on save is still returned, with Valid
// false and the reason in Problem.
func (s *SplitService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	d, err := s.buildDraft(ctx, userID, req.Msg.Config)
	if err != nil {
		return nil, toConnectError(err)
	}

	p := d.Preview()
	profiles, err := s.dir.Resolve(ctx, d.Participants)
	if err != nil {
		s.logger.Error("PreviewSplit: failed to resolve participants", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := &api.PreviewSplitResponse{
		Shares: toAPIShares(p.Shares, d.Items, profiles),
		Valid:  p.Err == nil,
	}
	if p.Err != nil {
		resp.Problem = p.Err.Error()
	}
	if len(p.Shares) > 0 {
		resp.AmountValid = calculator.IsAmountAllocationValid(p.Shares, d.Total)
		resp.PercentageValid = calculator.IsPercentageAllocationValid(p.Shares)
	}
	if p.Reconciliation != nil {
		resp.Reconciliation = &api.Reconciliation{
			ItemsTotal: p.Reconciliation.ItemsTotal,
			Difference: p.Reconciliation.Difference,
			State:      string(p.Reconciliation.State),
		}
	}
	return connect.NewResponse(resp), nil
}

// CreateSplit validates and saves a split. The saved allocation never changes.
func (s *SplitService) CreateSplit(ctx context.Context, req *connect.Request[api.CreateSplitRequest]) (*connect.Response[api.CreateSplitResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	d, err := s.buildDraft(ctx, userID, req.Msg.Config)
	if err != nil {
		return nil, toConnectError(err)
	}

	split, err := d.Build(s.now())
	if err != nil {
		reason := calculator.RejectionReason(err)
		metrics.IncAllocationRejected(reason)
		s.logger.Warn("CreateSplit rejected", "user_id", userID, "method", d.Method, "reason", reason, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateSplit(ctx, split); err != nil {
		s.logger.Error("CreateSplit failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	metrics.IncSplitCreated(string(split.Method))
	s.logger.Info("Split created",
		"split_id", split.ID,
		"transaction_id", split.TransactionID,
		"method", split.Method,
		"participants", len(split.Shares),
	)

	view, err := s.view(ctx, split, userID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.CreateSplitResponse{Split: view}), nil
}

// GetSplit returns a split to its owner or one of its participants.
func (s *SplitService) GetSplit(ctx context.Context, req *connect.Request[api.GetSplitRequest]) (*connect.Response[api.GetSplitResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	split, err := s.loadVisible(ctx, req.Msg.SplitID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	view, err := s.view(ctx, split, userID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.GetSplitResponse{Split: view}), nil
}

// ListSplits lists the caller's splits, newest first. A non-empty Status
// keeps only splits whose derived status, as the caller sees it, matches.
func (s *SplitService) ListSplits(ctx context.Context, req *connect.Request[api.ListSplitsRequest]) (*connect.Response[api.ListSplitsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	status := models.AggregateStatus(req.Msg.Status)
	if status != "" && !status.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown status %q", req.Msg.Status))
	}

	splits, err := s.listForRole(ctx, userID, req.Msg.Role)
	if err != nil {
		return nil, toConnectError(err)
	}
	if status != "" {
		kept := splits[:0]
		for _, sp := range splits {
			if settlement.Aggregate(sp.Shares, userID).Status == status {
				kept = append(kept, sp)
			}
		}
		splits = kept
	}

	views, err := s.views(ctx, splits, userID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.ListSplitsResponse{Splits: views}), nil
}

// DeleteSplit removes a split. Only the owner may delete, at any time.
func (s *SplitService) DeleteSplit(ctx context.Context, req *connect.Request[api.DeleteSplitRequest]) (*connect.Response[api.DeleteSplitResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	split, err := s.loadVisible(ctx, req.Msg.SplitID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if split.OwnerID != userID {
		return nil, toConnectError(errOwnerOnly)
	}

	if err := s.store.DeleteSplit(ctx, split.ID); err != nil {
		s.logger.Error("DeleteSplit failed", "split_id", split.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Split deleted", "split_id", split.ID, "user_id", userID)
	return connect.NewResponse(&api.DeleteSplitResponse{}), nil
}

// SetParticipantStatus sets one share to pending or paid. Participants may
// set their own share; the owner may set anyone's.
func (s *SplitService) SetParticipantStatus(ctx context.Context, req *connect.Request[api.SetParticipantStatusRequest]) (*connect.Response[api.SetParticipantStatusResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	status := models.SettlementStatus(req.Msg.Status)
	if !status.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("status must be %q or %q", models.StatusPending, models.StatusPaid))
	}

	view, err := s.setStatus(ctx, req.Msg.SplitID, req.Msg.ParticipantID, userID, func(models.SettlementStatus) models.SettlementStatus {
		return status
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SetParticipantStatusResponse{Split: view}), nil
}

// ToggleMyStatus flips the caller's own share between pending and paid.
func (s *SplitService) ToggleMyStatus(ctx context.Context, req *connect.Request[api.ToggleMyStatusRequest]) (*connect.Response[api.ToggleMyStatusResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	view, err := s.setStatus(ctx, req.Msg.SplitID, userID, userID, settlement.Toggle)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ToggleMyStatusResponse{Split: view}), nil
}

// GetBalances totals what the caller owes and is owed across pending shares.
func (s *SplitService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	splits, err := s.listForRole(ctx, userID, api.RoleAll)
	if err != nil {
		return nil, toConnectError(err)
	}

	bal := calculator.CalculateBalances(splits, userID)
	pending := calculator.PendingPayments(splits, userID)

	ids := []string{userID}
	for _, e := range bal.Edges {
		ids = append(ids, e.From, e.To)
	}
	profiles, err := s.dir.Resolve(ctx, ids)
	if err != nil {
		s.logger.Error("GetBalances: failed to resolve participants", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := &api.GetBalancesResponse{
		OwedToMe: bal.OwedToMe,
		IOwe:     bal.IOwe,
		Net:      bal.Net,
		Edges:    make([]api.DebtEdge, len(bal.Edges)),
		Pending:  make([]api.PendingPayment, len(pending)),
	}
	for i, e := range bal.Edges {
		resp.Edges[i] = api.DebtEdge{
			From:   toAPIProfile(profiles, e.From),
			To:     toAPIProfile(profiles, e.To),
			Amount: e.Amount,
		}
	}
	for i, p := range pending {
		resp.Pending[i] = api.PendingPayment{
			SplitID:       p.SplitID,
			TransactionID: p.TransactionID,
			From:          p.From,
			To:            p.To,
			Amount:        p.Amount,
		}
	}
	return connect.NewResponse(resp), nil
}

// ExportSplits renders the caller's splits as an XLSX workbook.
func (s *SplitService) ExportSplits(ctx context.Context, req *connect.Request[api.ExportSplitsRequest]) (*connect.Response[api.ExportSplitsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	splits, err := s.listForRole(ctx, userID, req.Msg.Role)
	if err != nil {
		return nil, toConnectError(err)
	}

	var ids []string
	for _, sp := range splits {
		ids = append(ids, sp.Participants()...)
	}
	profiles, err := s.dir.Resolve(ctx, ids)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	names := make(map[string]string, len(profiles))
	for id, p := range profiles {
		names[id] = p.DisplayName
	}

	content, err := export.BuildSplitsXLSX(splits, names, userID)
	if err != nil {
		s.logger.Error("ExportSplits failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Splits exported", "user_id", userID, "splits", len(splits), "bytes", len(content))
	return connect.NewResponse(&api.ExportSplitsResponse{
		Filename:    fmt.Sprintf("splits-%s.xlsx", s.now().UTC().Format("20060102")),
		ContentType: xlsxContentType,
		Content:     content,
	}), nil
}

// buildDraft replays a configuration through the draft reducer. Only the
// transaction's owner can split it.
func (s *SplitService) buildDraft(ctx context.Context, userID string, cfg api.SplitConfig) (draft.Draft, error) {
	if cfg.TransactionID == "" {
		return draft.Draft{}, connect.NewError(connect.CodeInvalidArgument, errors.New("transaction_id is required"))
	}
	tx, err := s.store.GetTransaction(ctx, cfg.TransactionID)
	if err != nil {
		return draft.Draft{}, err
	}
	if tx.OwnerID != userID {
		return draft.Draft{}, connect.NewError(connect.CodePermissionDenied, errTransactionOwner)
	}

	method := models.SplitMethod(cfg.Method)
	if method == "" {
		method = models.MethodEqual
	}

	actions := []draft.Action{
		draft.SetParticipants{IDs: cfg.ParticipantIDs},
		draft.SetMethod{Method: method},
	}
	for _, id := range sortedKeys(cfg.Percentages) {
		actions = append(actions, draft.SetPercentage{ParticipantID: id, Percentage: cfg.Percentages[id]})
	}
	for _, id := range sortedKeys(cfg.Amounts) {
		actions = append(actions, draft.SetAmount{ParticipantID: id, Amount: cfg.Amounts[id]})
	}
	// Item IDs from the client are not trusted; every saved item gets a new one.
	for _, it := range cfg.Items {
		actions = append(actions, draft.AddItem{Item: models.ReceiptItem{
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			AssignedTo: it.AssignedTo,
		}})
	}
	if len(cfg.Candidates) > 0 {
		candidates := make([]receipt.Candidate, len(cfg.Candidates))
		for i, c := range cfg.Candidates {
			candidates[i] = receipt.Candidate{Name: c.Name, Quantity: c.Quantity, Price: c.Price}
		}
		actions = append(actions, draft.ImportCandidates{Candidates: candidates})
	}

	return draft.ReduceAll(draft.New(tx, userID), actions...)
}

// setStatus authorizes and applies a status change to participantID's share,
// then returns the reloaded split.
func (s *SplitService) setStatus(ctx context.Context, splitID, participantID, callerID string, next func(models.SettlementStatus) models.SettlementStatus) (api.Split, error) {
	split, err := s.loadVisible(ctx, splitID, callerID)
	if err != nil {
		return api.Split{}, err
	}

	share, ok := split.ShareFor(participantID)
	if !ok {
		return api.Split{}, fmt.Errorf("%w: %s", storage.ErrParticipantNotFound, participantID)
	}

	actor, err := settlement.Authorize(split.OwnerID, participantID, callerID)
	if err != nil {
		s.logger.Warn("Settlement change denied", "split_id", splitID, "participant_id", participantID, "caller_id", callerID)
		return api.Split{}, err
	}

	status := next(share.Status)
	if err := s.store.UpdateParticipantStatus(ctx, split.ID, participantID, status); err != nil {
		s.logger.Warn("Settlement change failed", "split_id", splitID, "participant_id", participantID, "error", err)
		return api.Split{}, err
	}
	metrics.IncSettlementChange(string(actor), string(status))
	s.logger.Info("Settlement status changed",
		"split_id", split.ID,
		"participant_id", participantID,
		"status", status,
		"actor", actor,
	)

	updated, err := s.store.GetSplit(ctx, split.ID)
	if err != nil {
		return api.Split{}, err
	}
	return s.view(ctx, updated, callerID)
}

// loadVisible fetches a split the caller owns or participates in.
func (s *SplitService) loadVisible(ctx context.Context, splitID, userID string) (*models.Split, error) {
	if splitID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("split_id is required"))
	}
	split, err := s.store.GetSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if split.OwnerID != userID {
		if _, ok := split.ShareFor(userID); !ok {
			return nil, errNotVisible
		}
	}
	return split, nil
}

// listForRole returns owned splits, splits others own that the user is in,
// or both, newest first.
func (s *SplitService) listForRole(ctx context.Context, userID, role string) ([]*models.Split, error) {
	switch role {
	case api.RoleAll, api.RoleOwner, api.RoleParticipant:
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown role %q", role))
	}

	var out []*models.Split
	if role == api.RoleAll || role == api.RoleOwner {
		owned, err := s.store.ListSplitsByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, owned...)
	}
	if role == api.RoleAll || role == api.RoleParticipant {
		shared, err := s.store.ListSplitsByParticipant(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, sp := range shared {
			if sp.OwnerID != userID {
				out = append(out, sp)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (s *SplitService) view(ctx context.Context, split *models.Split, callerID string) (api.Split, error) {
	views, err := s.views(ctx, []*models.Split{split}, callerID)
	if err != nil {
		return api.Split{}, err
	}
	return views[0], nil
}

// views converts splits for the caller, resolving every participant in one lookup.
func (s *SplitService) views(ctx context.Context, splits []*models.Split, callerID string) ([]api.Split, error) {
	var ids []string
	for _, sp := range splits {
		ids = append(ids, sp.Participants()...)
	}
	profiles, err := s.dir.Resolve(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participants: %w", err)
	}

	out := make([]api.Split, len(splits))
	for i, sp := range splits {
		sum := settlement.Aggregate(sp.Shares, callerID)
		out[i] = api.Split{
			ID:                sp.ID,
			OwnerID:           sp.OwnerID,
			TransactionID:     sp.TransactionID,
			Method:            string(sp.Method),
			Total:             sp.Total,
			Shares:            toAPIShares(sp.Shares, sp.Items, profiles),
			Items:             toAPIItems(sp.Items),
			CreatedAt:         sp.CreatedAt,
			Status:            string(sum.Status),
			SettledCount:      sum.SettledCount,
			TotalParticipants: sum.TotalParticipants,
		}
	}
	return out, nil
}

func toAPIShares(shares []models.Share, items []models.ReceiptItem, profiles map[string]directory.Profile) []api.Share {
	out := make([]api.Share, len(shares))
	for i, sh := range shares {
		out[i] = api.Share{
			ParticipantID: sh.ParticipantID,
			Participant:   toAPIProfile(profiles, sh.ParticipantID),
			Amount:        sh.Amount,
			Percentage:    sh.Percentage,
			Status:        string(sh.Status),
			Items:         receipt.ItemsFor(items, sh.ParticipantID),
		}
	}
	return out
}

func toAPIItems(items []models.ReceiptItem) []api.ReceiptItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]api.ReceiptItem, len(items))
	for i, it := range items {
		out[i] = api.ReceiptItem{
			ID:         it.ID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			AssignedTo: it.AssignedTo,
		}
	}
	return out
}

func toAPIProfile(profiles map[string]directory.Profile, id string) api.Profile {
	p, ok := profiles[id]
	if !ok {
		p = directory.NewProfile(id, id)
	}
	return api.Profile{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Initials:    p.Initials,
		Color:       p.Color,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
