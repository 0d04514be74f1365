package api

import "github.com/shopspring/decimal"

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

// Profile is a participant's display metadata.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Initials    string `json:"initials"`
	Color       string `json:"color"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type MeRequest struct{}

type MeResponse struct {
	User User `json:"user"`
}

// Transaction is a stored transaction.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Merchant    string          `json:"merchant"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Source      string          `json:"source"`
	ExternalID  string          `json:"external_id,omitempty"`
	CreatedAt   int64           `json:"created_at"`
}

type CreateTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Merchant    string          `json:"merchant"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
}

type CreateTransactionResponse struct {
	Transaction Transaction `json:"transaction"`
}

// ImportedTransaction is one row of a bank feed batch.
type ImportedTransaction struct {
	ExternalID  string          `json:"external_id"`
	Amount      decimal.Decimal `json:"amount"`
	Merchant    string          `json:"merchant"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
}

type ImportTransactionsRequest struct {
	Transactions []ImportedTransaction `json:"transactions"`
}

type ImportTransactionsResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type ListTransactionsRequest struct{}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// ReceiptItem is a receipt line. AssignedTo lists participant IDs. ID is
// ignored on input; saved items get fresh IDs.
type ReceiptItem struct {
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	AssignedTo []string        `json:"assigned_to,omitempty"`
}

// ReceiptCandidate is a line proposed by receipt recognition. It enters the
// split unassigned.
type ReceiptCandidate struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// SplitConfig is everything needed to allocate a transaction.
type SplitConfig struct {
	TransactionID  string                     `json:"transaction_id"`
	Method         string                     `json:"method"`
	ParticipantIDs []string                   `json:"participant_ids"`
	Percentages    map[string]decimal.Decimal `json:"percentages,omitempty"`
	Amounts        map[string]decimal.Decimal `json:"amounts,omitempty"`
	Items          []ReceiptItem              `json:"items,omitempty"`
	Candidates     []ReceiptCandidate         `json:"candidates,omitempty"`
}

// Share is one participant's portion.
type Share struct {
	ParticipantID string          `json:"participant_id"`
	Participant   Profile         `json:"participant"`
	Amount        decimal.Decimal `json:"amount"`
	Percentage    decimal.Decimal `json:"percentage"`
	Status        string          `json:"status,omitempty"`
	// Items lists the IDs of the receipt items this participant shares (itemized only).
	Items []string `json:"items,omitempty"`
}

type Reconciliation struct {
	ItemsTotal decimal.Decimal `json:"items_total"`
	Difference decimal.Decimal `json:"difference"`
	State      string          `json:"state"`
}

// Split is a saved split with its derived status as seen by the caller.
type Split struct {
	ID                string          `json:"id"`
	OwnerID           string          `json:"owner_id"`
	TransactionID     string          `json:"transaction_id"`
	Method            string          `json:"method"`
	Total             decimal.Decimal `json:"total"`
	Shares            []Share         `json:"shares"`
	Items             []ReceiptItem   `json:"items,omitempty"`
	CreatedAt         int64           `json:"created_at"`
	Status            string          `json:"status"`
	SettledCount      int             `json:"settled_count"`
	TotalParticipants int             `json:"total_participants"`
}

type PreviewSplitRequest struct {
	Config SplitConfig `json:"config"`
}

type PreviewSplitResponse struct {
	Shares          []Share         `json:"shares"`
	Valid           bool            `json:"valid"`
	Problem         string          `json:"problem,omitempty"`
	AmountValid     bool            `json:"amount_valid"`
	PercentageValid bool            `json:"percentage_valid"`
	Reconciliation  *Reconciliation `json:"reconciliation,omitempty"`
}

type CreateSplitRequest struct {
	Config SplitConfig `json:"config"`
}

type CreateSplitResponse struct {
	Split Split `json:"split"`
}

type GetSplitRequest struct {
	SplitID string `json:"split_id"`
}

type GetSplitResponse struct {
	Split Split `json:"split"`
}

// Split list filters.
const (
	RoleAll         = ""
	RoleOwner       = "owner"
	RoleParticipant = "participant"
)

type ListSplitsRequest struct {
	Role string `json:"role,omitempty"`
	// Status is "", "pending", "settled_by_me" or "all_settled".
	Status string `json:"status,omitempty"`
}

type ListSplitsResponse struct {
	Splits []Split `json:"splits"`
}

type DeleteSplitRequest struct {
	SplitID string `json:"split_id"`
}

type DeleteSplitResponse struct{}

type SetParticipantStatusRequest struct {
	SplitID       string `json:"split_id"`
	ParticipantID string `json:"participant_id"`
	Status        string `json:"status"`
}

type SetParticipantStatusResponse struct {
	Split Split `json:"split"`
}

type ToggleMyStatusRequest struct {
	SplitID string `json:"split_id"`
}

type ToggleMyStatusResponse struct {
	Split Split `json:"split"`
}

type DebtEdge struct {
	From   Profile         `json:"from"`
	To     Profile         `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type PendingPayment struct {
	SplitID       string          `json:"split_id"`
	TransactionID string          `json:"transaction_id"`
	From          string          `json:"from"`
	To            string          `json:"to"`
	Amount        decimal.Decimal `json:"amount"`
}

type GetBalancesRequest struct{}

type GetBalancesResponse struct {
	OwedToMe decimal.Decimal  `json:"owed_to_me"`
	IOwe     decimal.Decimal  `json:"i_owe"`
	Net      decimal.Decimal  `json:"net"`
	Edges    []DebtEdge       `json:"edges"`
	Pending  []PendingPayment `json:"pending"`
}

type ExportSplitsRequest struct {
	Role string `json:"role,omitempty"`
}

type ExportSplitsResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	// Content is the XLSX workbook, base64 in JSON.
	Content []byte `json:"content"`
}
