package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	AuthServiceName        = "splitledger.v1.AuthService"
	TransactionServiceName = "splitledger.v1.TransactionService"
	SplitServiceName       = "splitledger.v1.SplitService"
)

// Fully-qualified procedure names, also used as HTTP routes.
const (
	AuthServiceRegisterProcedure = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure    = "/" + AuthServiceName + "/Login"
	AuthServiceMeProcedure       = "/" + AuthServiceName + "/Me"

	TransactionServiceCreateTransactionProcedure  = "/" + TransactionServiceName + "/CreateTransaction"
	TransactionServiceImportTransactionsProcedure = "/" + TransactionServiceName + "/ImportTransactions"
	TransactionServiceListTransactionsProcedure   = "/" + TransactionServiceName + "/ListTransactions"

	SplitServicePreviewSplitProcedure         = "/" + SplitServiceName + "/PreviewSplit"
	SplitServiceCreateSplitProcedure          = "/" + SplitServiceName + "/CreateSplit"
	SplitServiceGetSplitProcedure             = "/" + SplitServiceName + "/GetSplit"
	SplitServiceListSplitsProcedure           = "/" + SplitServiceName + "/ListSplits"
	SplitServiceDeleteSplitProcedure          = "/" + SplitServiceName + "/DeleteSplit"
	SplitServiceSetParticipantStatusProcedure = "/" + SplitServiceName + "/SetParticipantStatus"
	SplitServiceToggleMyStatusProcedure       = "/" + SplitServiceName + "/ToggleMyStatus"
	SplitServiceGetBalancesProcedure          = "/" + SplitServiceName + "/GetBalances"
	SplitServiceExportSplitsProcedure         = "/" + SplitServiceName + "/ExportSplits"
)

// PublicProcedures can be called without a token.
var PublicProcedures = map[string]bool{
	AuthServiceRegisterProcedure: true,
	AuthServiceLoginProcedure:    true,
}

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	Me(context.Context, *connect.Request[MeRequest]) (*connect.Response[MeResponse], error)
}

// TransactionServiceHandler is implemented by the transaction service.
type TransactionServiceHandler interface {
	CreateTransaction(context.Context, *connect.Request[CreateTransactionRequest]) (*connect.Response[CreateTransactionResponse], error)
	ImportTransactions(context.Context, *connect.Request[ImportTransactionsRequest]) (*connect.Response[ImportTransactionsResponse], error)
	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
}

// SplitServiceHandler is implemented by the split service.
type SplitServiceHandler interface {
	PreviewSplit(context.Context, *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error)
	CreateSplit(context.Context, *connect.Request[CreateSplitRequest]) (*connect.Response[CreateSplitResponse], error)
	GetSplit(context.Context, *connect.Request[GetSplitRequest]) (*connect.Response[GetSplitResponse], error)
	ListSplits(context.Context, *connect.Request[ListSplitsRequest]) (*connect.Response[ListSplitsResponse], error)
	DeleteSplit(context.Context, *connect.Request[DeleteSplitRequest]) (*connect.Response[DeleteSplitResponse], error)
	SetParticipantStatus(context.Context, *connect.Request[SetParticipantStatusRequest]) (*connect.Response[SetParticipantStatusResponse], error)
	ToggleMyStatus(context.Context, *connect.Request[ToggleMyStatusRequest]) (*connect.Response[ToggleMyStatusResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	ExportSplits(context.Context, *connect.Request[ExportSplitsRequest]) (*connect.Response[ExportSplitsResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + AuthServiceName + "/", route(map[string]http.Handler{
		AuthServiceRegisterProcedure: unary(AuthServiceRegisterProcedure, svc.Register, opts),
		AuthServiceLoginProcedure:    unary(AuthServiceLoginProcedure, svc.Login, opts),
		AuthServiceMeProcedure:       unary(AuthServiceMeProcedure, svc.Me, opts),
	})
}

// NewTransactionServiceHandler builds an HTTP handler from the service implementation.
func NewTransactionServiceHandler(svc TransactionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + TransactionServiceName + "/", route(map[string]http.Handler{
		TransactionServiceCreateTransactionProcedure:  unary(TransactionServiceCreateTransactionProcedure, svc.CreateTransaction, opts),
		TransactionServiceImportTransactionsProcedure: unary(TransactionServiceImportTransactionsProcedure, svc.ImportTransactions, opts),
		TransactionServiceListTransactionsProcedure:   unary(TransactionServiceListTransactionsProcedure, svc.ListTransactions, opts),
	})
}

// NewSplitServiceHandler builds an HTTP handler from the service implementation.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + SplitServiceName + "/", route(map[string]http.Handler{
		SplitServicePreviewSplitProcedure:         unary(SplitServicePreviewSplitProcedure, svc.PreviewSplit, opts),
		SplitServiceCreateSplitProcedure:          unary(SplitServiceCreateSplitProcedure, svc.CreateSplit, opts),
		SplitServiceGetSplitProcedure:             unary(SplitServiceGetSplitProcedure, svc.GetSplit, opts),
		SplitServiceListSplitsProcedure:           unary(SplitServiceListSplitsProcedure, svc.ListSplits, opts),
		SplitServiceDeleteSplitProcedure:          unary(SplitServiceDeleteSplitProcedure, svc.DeleteSplit, opts),
		SplitServiceSetParticipantStatusProcedure: unary(SplitServiceSetParticipantStatusProcedure, svc.SetParticipantStatus, opts),
		SplitServiceToggleMyStatusProcedure:       unary(SplitServiceToggleMyStatusProcedure, svc.ToggleMyStatus, opts),
		SplitServiceGetBalancesProcedure:          unary(SplitServiceGetBalancesProcedure, svc.GetBalances, opts),
		SplitServiceExportSplitsProcedure:         unary(SplitServiceExportSplitsProcedure, svc.ExportSplits, opts),
	})
}

func unary[Req, Res any](
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) http.Handler {
	return connect.NewUnaryHandler(procedure, fn,
		connect.WithCodec(Codec{}),
		connect.WithHandlerOptions(opts...),
	)
}

func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](
		httpClient,
		strings.TrimRight(baseURL, "/")+procedure,
		connect.WithCodec(Codec{}),
		connect.WithClientOptions(opts...),
	)
}

// AuthServiceClient calls AuthService over Connect.
type AuthServiceClient struct {
	register *connect.Client[RegisterRequest, RegisterResponse]
	login    *connect.Client[LoginRequest, LoginResponse]
	me       *connect.Client[MeRequest, MeResponse]
}

// NewAuthServiceClient constructs a client for AuthService at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register: newClient[RegisterRequest, RegisterResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:    newClient[LoginRequest, LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		me:       newClient[MeRequest, MeResponse](httpClient, baseURL, AuthServiceMeProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Me(ctx context.Context, req *connect.Request[MeRequest]) (*connect.Response[MeResponse], error) {
	return c.me.CallUnary(ctx, req)
}

// TransactionServiceClient calls TransactionService over Connect.
type TransactionServiceClient struct {
	create *connect.Client[CreateTransactionRequest, CreateTransactionResponse]
	imp    *connect.Client[ImportTransactionsRequest, ImportTransactionsResponse]
	list   *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
}

// NewTransactionServiceClient constructs a client for TransactionService at baseURL.
func NewTransactionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TransactionServiceClient {
	return &TransactionServiceClient{
		create: newClient[CreateTransactionRequest, CreateTransactionResponse](httpClient, baseURL, TransactionServiceCreateTransactionProcedure, opts),
		imp:    newClient[ImportTransactionsRequest, ImportTransactionsResponse](httpClient, baseURL, TransactionServiceImportTransactionsProcedure, opts),
		list:   newClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL, TransactionServiceListTransactionsProcedure, opts),
	}
}

func (c *TransactionServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[CreateTransactionRequest]) (*connect.Response[CreateTransactionResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *TransactionServiceClient) ImportTransactions(ctx context.Context, req *connect.Request[ImportTransactionsRequest]) (*connect.Response[ImportTransactionsResponse], error) {
	return c.imp.CallUnary(ctx, req)
}

func (c *TransactionServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.list.CallUnary(ctx, req)
}

// SplitServiceClient calls SplitService over Connect.
type SplitServiceClient struct {
	preview   *connect.Client[PreviewSplitRequest, PreviewSplitResponse]
	create    *connect.Client[CreateSplitRequest, CreateSplitResponse]
	get       *connect.Client[GetSplitRequest, GetSplitResponse]
	list      *connect.Client[ListSplitsRequest, ListSplitsResponse]
	del       *connect.Client[DeleteSplitRequest, DeleteSplitResponse]
	setStatus *connect.Client[SetParticipantStatusRequest, SetParticipantStatusResponse]
	toggle    *connect.Client[ToggleMyStatusRequest, ToggleMyStatusResponse]
	balances  *connect.Client[GetBalancesRequest, GetBalancesResponse]
	export    *connect.Client[ExportSplitsRequest, ExportSplitsResponse]
}

// NewSplitServiceClient constructs a client for SplitService at baseURL.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SplitServiceClient {
	return &SplitServiceClient{
		preview:   newClient[PreviewSplitRequest, PreviewSplitResponse](httpClient, baseURL, SplitServicePreviewSplitProcedure, opts),
		create:    newClient[CreateSplitRequest, CreateSplitResponse](httpClient, baseURL, SplitServiceCreateSplitProcedure, opts),
		get:       newClient[GetSplitRequest, GetSplitResponse](httpClient, baseURL, SplitServiceGetSplitProcedure, opts),
		list:      newClient[ListSplitsRequest, ListSplitsResponse](httpClient, baseURL, SplitServiceListSplitsProcedure, opts),
		del:       newClient[DeleteSplitRequest, DeleteSplitResponse](httpClient, baseURL, SplitServiceDeleteSplitProcedure, opts),
		setStatus: newClient[SetParticipantStatusRequest, SetParticipantStatusResponse](httpClient, baseURL, SplitServiceSetParticipantStatusProcedure, opts),
		toggle:    newClient[ToggleMyStatusRequest, ToggleMyStatusResponse](httpClient, baseURL, SplitServiceToggleMyStatusProcedure, opts),
		balances:  newClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL, SplitServiceGetBalancesProcedure, opts),
		export:    newClient[ExportSplitsRequest, ExportSplitsResponse](httpClient, baseURL, SplitServiceExportSplitsProcedure, opts),
	}
}

func (c *SplitServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error) {
	return c.preview.CallUnary(ctx, req)
}

func (c *SplitServiceClient) CreateSplit(ctx context.Context, req *connect.Request[CreateSplitRequest]) (*connect.Response[CreateSplitResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *SplitServiceClient) GetSplit(ctx context.Context, req *connect.Request[GetSplitRequest]) (*connect.Response[GetSplitResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *SplitServiceClient) ListSplits(ctx context.Context, req *connect.Request[ListSplitsRequest]) (*connect.Response[ListSplitsResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *SplitServiceClient) DeleteSplit(ctx context.Context, req *connect.Request[DeleteSplitRequest]) (*connect.Response[DeleteSplitResponse], error) {
	return c.del.CallUnary(ctx, req)
}

func (c *SplitServiceClient) SetParticipantStatus(ctx context.Context, req *connect.Request[SetParticipantStatusRequest]) (*connect.Response[SetParticipantStatusResponse], error) {
	return c.setStatus.CallUnary(ctx, req)
}

func (c *SplitServiceClient) ToggleMyStatus(ctx context.Context, req *connect.Request[ToggleMyStatusRequest]) (*connect.Response[ToggleMyStatusResponse], error) {
	return c.toggle.CallUnary(ctx, req)
}

func (c *SplitServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.balances.CallUnary(ctx, req)
}

func (c *SplitServiceClient) ExportSplits(ctx context.Context, req *connect.Request[ExportSplitsRequest]) (*connect.Response[ExportSplitsResponse], error) {
	return c.export.CallUnary(ctx, req)
}
