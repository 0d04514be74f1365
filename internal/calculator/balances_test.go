package calculator

import (
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func TestCalculateBalances(t *testing.T) {
	splits := []*models.Split{
		{
			ID:      "dinner",
			OwnerID: "Alice",
			Shares: []models.Share{
				{ParticipantID: "Alice", Amount: dec("10"), Status: models.StatusPending},
				{ParticipantID: "Bob", Amount: dec("10"), Status: models.StatusPending},
				{ParticipantID: "Charlie", Amount: dec("10"), Status: models.StatusPaid},
			},
		},
		{
			ID:      "taxi",
			OwnerID: "Bob",
			Shares: []models.Share{
				{ParticipantID: "Alice", Amount: dec("4"), Status: models.StatusPending},
				{ParticipantID: "Bob", Amount: dec("4"), Status: models.StatusPaid},
			},
		},
		{
			ID:      "groceries",
			OwnerID: "Dana",
			Shares: []models.Share{
				{ParticipantID: "Alice", Amount: dec("7.25"), Status: models.StatusPending},
				{ParticipantID: "Dana", Amount: dec("7.25"), Status: models.StatusPending},
			},
		},
	}

	bal := CalculateBalances(splits, "Alice")

	// Bob owes Alice 10 for dinner; Charlie already paid.
	if !bal.OwedToMe.Equal(dec("10")) {
		t.Errorf("OwedToMe = %s, want 10", bal.OwedToMe)
	}
	// Alice owes Bob 4 and Dana 7.25.
	if !bal.IOwe.Equal(dec("11.25")) {
		t.Errorf("IOwe = %s, want 11.25", bal.IOwe)
	}
	if !bal.Net.Equal(dec("-1.25")) {
		t.Errorf("Net = %s, want -1.25", bal.Net)
	}

	if len(bal.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d: %+v", len(bal.Edges), bal.Edges)
	}
	// Bob: owes Alice 10, is owed 4 → nets to 6 from Bob to Alice.
	if e := bal.Edges[0]; e.From != "Bob" || e.To != "Alice" || !e.Amount.Equal(dec("6")) {
		t.Errorf("edge[0] = %+v, want Bob→Alice 6", e)
	}
	if e := bal.Edges[1]; e.From != "Alice" || e.To != "Dana" || !e.Amount.Equal(dec("7.25")) {
		t.Errorf("edge[1] = %+v, want Alice→Dana 7.25", e)
	}
}

func TestPendingPaymentsIgnoresUninvolved(t *testing.T) {
	splits := []*models.Split{{
		ID:      "s1",
		OwnerID: "Bob",
		Shares: []models.Share{
			{ParticipantID: "Charlie", Amount: dec("5"), Status: models.StatusPending},
		},
	}}

	if got := PendingPayments(splits, "Alice"); len(got) != 0 {
		t.Errorf("expected no pending payments for Alice, got %+v", got)
	}
	if got := PendingPayments(splits, "Bob"); len(got) != 1 {
		t.Errorf("expected 1 pending payment for Bob, got %d", len(got))
	}

	bal := CalculateBalances(nil, "Alice")
	if !bal.Net.IsZero() || len(bal.Edges) != 0 {
		t.Errorf("empty balances = %+v", bal)
	}
}
