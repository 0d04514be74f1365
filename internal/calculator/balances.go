package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Balance summarizes what a user owes and is owed across saved splits.
type Balance struct {
	UserID   string
	OwedToMe decimal.Decimal // Pending shares of others in splits the user owns
	IOwe     decimal.Decimal // The user's pending shares in splits owned by others
	Net      decimal.Decimal // Positive = owed money, Negative = owes money
	Edges    []DebtEdge
}

// DebtEdge represents a net debt between the user and one counterparty.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// PendingPayment is one unpaid share the user is involved in.
type PendingPayment struct {
	SplitID       string
	TransactionID string
	From          string
	To            string
	Amount        decimal.Decimal
}

// CalculateBalances computes userID's outstanding balance across splits.
//
// Algorithm:
// - The split owner paid the transaction, so every other participant's
//   pending share is a debt from that participant to the owner
// - Paid shares and the owner's own share carry no debt
// - Debts between the user and each counterparty are netted into one edge
func CalculateBalances(splits []*models.Split, userID string) Balance {
	bal := Balance{
		UserID:   userID,
		OwedToMe: decimal.Zero,
		IOwe:     decimal.Zero,
	}

	// net[other] > 0 means other owes the user
	net := make(map[string]decimal.Decimal)

	for _, p := range PendingPayments(splits, userID) {
		if p.To == userID {
			bal.OwedToMe = bal.OwedToMe.Add(p.Amount)
			net[p.From] = net[p.From].Add(p.Amount)
		} else {
			bal.IOwe = bal.IOwe.Add(p.Amount)
			net[p.To] = net[p.To].Sub(p.Amount)
		}
	}
	bal.Net = bal.OwedToMe.Sub(bal.IOwe)

	others := make([]string, 0, len(net))
	for other := range net {
		others = append(others, other)
	}
	sort.Strings(others)

	for _, other := range others {
		amount := net[other]
		switch {
		case amount.IsPositive():
			bal.Edges = append(bal.Edges, DebtEdge{From: other, To: userID, Amount: amount})
		case amount.IsNegative():
			bal.Edges = append(bal.Edges, DebtEdge{From: userID, To: other, Amount: amount.Neg()})
		}
	}

	return bal
}

// PendingPayments lists the unpaid shares involving userID, either as the
// debtor or as the split owner being paid.
func PendingPayments(splits []*models.Split, userID string) []PendingPayment {
	var out []PendingPayment
	for _, s := range splits {
		for _, sh := range s.Shares {
			if sh.Status != models.StatusPending || sh.ParticipantID == s.OwnerID {
				continue
			}
			if sh.ParticipantID != userID && s.OwnerID != userID {
				continue
			}
			out = append(out, PendingPayment{
				SplitID:       s.ID,
				TransactionID: s.TransactionID,
				From:          sh.ParticipantID,
				To:            s.OwnerID,
				Amount:        sh.Amount,
			})
		}
	}
	return out
}
