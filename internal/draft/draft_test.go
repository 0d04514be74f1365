package draft

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/receipt"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newDraft(total string) Draft {
	return New(&models.Transaction{ID: "tx-1", Amount: dec(total)}, "alice")
}

func TestEqualDraftBuilds(t *testing.T) {
	d, err := ReduceAll(newDraft("10.00"),
		SetParticipants{IDs: []string{"alice", "bob", "carol"}},
	)
	require.NoError(t, err)

	p := d.Preview()
	require.NoError(t, p.Err)
	require.Len(t, p.Shares, 3)
	assert.Nil(t, p.Reconciliation)

	split, err := d.Build(time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Equal(t, "alice", split.OwnerID)
	assert.Equal(t, "tx-1", split.TransactionID)
	assert.Equal(t, models.MethodEqual, split.Method)
	assert.Equal(t, int64(1700000000), split.CreatedAt)
	assert.Empty(t, split.Items)
	assert.True(t, split.Shares[0].Amount.Equal(dec("3.34")))
}

func TestReduceLeavesPreviousDraftUntouched(t *testing.T) {
	d0, err := Reduce(newDraft("50"), SetParticipants{IDs: []string{"alice", "bob"}})
	require.NoError(t, err)
	d1, err := Reduce(d0, SetMethod{Method: models.MethodPercentage})
	require.NoError(t, err)
	d2, err := Reduce(d1, SetPercentage{ParticipantID: "bob", Percentage: dec("40")})
	require.NoError(t, err)

	assert.Equal(t, models.MethodEqual, d0.Method)
	assert.Empty(t, d1.Percentages)
	assert.True(t, d2.Percentages["bob"].Equal(dec("40")))

	_, err = Reduce(d2, SetPercentage{ParticipantID: "mallory", Percentage: dec("60")})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = Reduce(d2, SetMethod{Method: "thirds"})
	assert.ErrorIs(t, err, calculator.ErrUnknownMethod)
}

func TestPercentageDraftGate(t *testing.T) {
	d, err := ReduceAll(newDraft("50"),
		SetParticipants{IDs: []string{"alice", "bob"}},
		SetMethod{Method: models.MethodPercentage},
		SetPercentage{ParticipantID: "alice", Percentage: dec("60")},
		SetPercentage{ParticipantID: "bob", Percentage: dec("30")},
	)
	require.NoError(t, err)

	assert.ErrorIs(t, d.Preview().Err, calculator.ErrIncompleteAllocation)
	_, err = d.Build(time.Now())
	assert.ErrorIs(t, err, calculator.ErrIncompleteAllocation)

	d, err = Reduce(d, SetPercentage{ParticipantID: "bob", Percentage: dec("40")})
	require.NoError(t, err)
	split, err := d.Build(time.Now())
	require.NoError(t, err)
	assert.True(t, split.Shares[0].Amount.Equal(dec("30")))
	assert.True(t, split.Shares[1].Amount.Equal(dec("20")))
}

func TestCustomDraft(t *testing.T) {
	d, err := ReduceAll(newDraft("25"),
		SetParticipants{IDs: []string{"alice", "bob"}},
		SetMethod{Method: models.MethodCustom},
		SetAmount{ParticipantID: "alice", Amount: dec("20")},
	)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Preview().Err, calculator.ErrIncompleteAllocation)

	d, err = Reduce(d, SetAmount{ParticipantID: "bob", Amount: dec("5")})
	require.NoError(t, err)
	_, err = d.Build(time.Now())
	require.NoError(t, err)
}

func TestItemizedDraft(t *testing.T) {
	d, err := ReduceAll(newDraft("50"),
		SetParticipants{IDs: []string{"alice", "bob"}},
		SetMethod{Method: models.MethodItemized},
		AddItem{Item: models.ReceiptItem{ID: "pizza", Name: "Pizza", Quantity: 1, UnitPrice: dec("40")}},
		AddItem{Item: models.ReceiptItem{ID: "wine", Name: "Wine", Quantity: 1, UnitPrice: dec("12")}},
	)
	require.NoError(t, err)

	p := d.Preview()
	assert.ErrorIs(t, p.Err, calculator.ErrUnassignedItem)
	require.NotNil(t, p.Reconciliation)
	assert.Equal(t, receipt.Over, p.Reconciliation.State)

	price := dec("10")
	d, err = ReduceAll(d,
		UpdateItem{ID: "wine", Patch: receipt.Patch{UnitPrice: &price}},
		AssignItem{ItemID: "pizza", ParticipantID: "alice"},
		AssignItem{ItemID: "pizza", ParticipantID: "bob"},
		AssignItem{ItemID: "wine", ParticipantID: "bob"},
	)
	require.NoError(t, err)

	p = d.Preview()
	require.NoError(t, p.Err)
	assert.Equal(t, receipt.ExactMatch, p.Reconciliation.State)

	split, err := d.Build(time.Now())
	require.NoError(t, err)
	require.Len(t, split.Items, 2)
	assert.True(t, split.Shares[0].Amount.Equal(dec("20")))
	assert.True(t, split.Shares[1].Amount.Equal(dec("30")))

	// the saved snapshot is detached from later draft edits
	d, err = Reduce(d, UnassignItem{ItemID: "wine", ParticipantID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, split.Items[1].AssignedTo)
	assert.ErrorIs(t, d.Preview().Err, calculator.ErrUnassignedItem)

	_, err = Reduce(d, AssignItem{ItemID: "wine", ParticipantID: "mallory"})
	assert.ErrorIs(t, err, ErrNotParticipant)

	d, err = Reduce(d, RemoveItem{ID: "wine"})
	require.NoError(t, err)
	assert.Len(t, d.Items, 1)
}

func TestToggleParticipantDropsTheirInput(t *testing.T) {
	d, err := ReduceAll(newDraft("30"),
		ToggleParticipant{ID: "alice"},
		ToggleParticipant{ID: "bob"},
		SetMethod{Method: models.MethodItemized},
		AddItem{Item: models.ReceiptItem{ID: "x", Name: "X", Quantity: 1, UnitPrice: dec("30"), AssignedTo: []string{"bob"}}},
		SetAmount{ParticipantID: "bob", Amount: dec("30")},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, d.Participants)

	d, err = Reduce(d, ToggleParticipant{ID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, d.Participants)
	assert.Empty(t, d.Items[0].AssignedTo)
	_, ok := d.Amounts["bob"]
	assert.False(t, ok)

	_, err = Reduce(d, SetParticipants{IDs: []string{"a", "a"}})
	assert.ErrorIs(t, err, calculator.ErrDuplicateParticipant)
}

func TestBuildWithNoParticipantsFailsLoudly(t *testing.T) {
	_, err := newDraft("10").Build(time.Now())
	assert.ErrorIs(t, err, calculator.ErrNoParticipants)
}

func TestImportCandidatesStartUnassigned(t *testing.T) {
	d, err := ReduceAll(newDraft("25.00"),
		SetParticipants{IDs: []string{"alice", "bob"}},
		SetMethod{Method: models.MethodItemized},
		ImportCandidates{Candidates: []receipt.Candidate{
			{Name: "Noodles", Quantity: 2, Price: dec("10.00")},
			{Name: " Tea ", Price: dec("5.00")},
		}},
	)
	require.NoError(t, err)
	require.Len(t, d.Items, 2)
	assert.Equal(t, "Tea", d.Items[1].Name)
	assert.Equal(t, 1, d.Items[1].Quantity)
	assert.Empty(t, d.Items[0].AssignedTo)

	p := d.Preview()
	assert.ErrorIs(t, p.Err, calculator.ErrUnassignedItem)
	require.NotNil(t, p.Reconciliation)
	assert.Equal(t, receipt.ExactMatch, p.Reconciliation.State)

	d, err = ReduceAll(d,
		AssignItem{ItemID: d.Items[0].ID, ParticipantID: "alice"},
		AssignItem{ItemID: d.Items[1].ID, ParticipantID: "bob"},
	)
	require.NoError(t, err)
	split, err := d.Build(time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.True(t, split.Shares[0].Amount.Equal(dec("20.00")))
	assert.True(t, split.Shares[1].Amount.Equal(dec("5.00")))

	_, err = Reduce(d, ImportCandidates{Candidates: []receipt.Candidate{{Name: "", Price: dec("1")}}})
	assert.ErrorIs(t, err, receipt.ErrEmptyName)
}

func TestOutOfRangeInputKeepsPreviousDraft(t *testing.T) {
	d, err := ReduceAll(newDraft("100"),
		SetParticipants{IDs: []string{"alice", "bob"}},
		SetMethod{Method: models.MethodPercentage},
		SetPercentage{ParticipantID: "alice", Percentage: dec("60")},
	)
	require.NoError(t, err)

	next, err := Reduce(d, SetPercentage{ParticipantID: "alice", Percentage: dec("150")})
	assert.ErrorIs(t, err, calculator.ErrPercentageOutOfRange)
	assert.True(t, next.Percentages["alice"].Equal(dec("60")))

	_, err = Reduce(d, SetPercentage{ParticipantID: "bob", Percentage: dec("-50")})
	assert.ErrorIs(t, err, calculator.ErrPercentageOutOfRange)

	_, err = Reduce(d, SetAmount{ParticipantID: "bob", Amount: dec("-30")})
	assert.ErrorIs(t, err, calculator.ErrNegativeAmount)
}
