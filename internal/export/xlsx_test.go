package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/splitledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildSplitsXLSX(t *testing.T) {
	splits := []*models.Split{
		{
			ID:            "s1",
			TransactionID: "tx1",
			OwnerID:       "alice",
			Method:        models.MethodItemized,
			Total:         dec("50"),
			CreatedAt:     1700000000,
			Shares: []models.Share{
				{ParticipantID: "alice", Amount: dec("20"), Percentage: dec("40"), Status: models.StatusPaid},
				{ParticipantID: "bob", Amount: dec("30"), Percentage: dec("60"), Status: models.StatusPending},
			},
			Items: []models.ReceiptItem{
				{ID: "i1", Name: "Pizza", Quantity: 1, UnitPrice: dec("40"), AssignedTo: []string{"alice", "bob"}},
				{ID: "i2", Name: "Wine", Quantity: 2, UnitPrice: dec("5"), AssignedTo: []string{"bob"}},
			},
		},
		{
			ID:            "s2",
			TransactionID: "tx2",
			OwnerID:       "alice",
			Method:        models.MethodEqual,
			Total:         dec("10"),
			CreatedAt:     1700000100,
			Shares: []models.Share{
				{ParticipantID: "alice", Amount: dec("5"), Percentage: dec("50"), Status: models.StatusPaid},
				{ParticipantID: "carol", Amount: dec("5"), Percentage: dec("50"), Status: models.StatusPaid},
			},
		},
	}
	names := map[string]string{"alice": "Alice", "bob": "Bob"}

	data, err := BuildSplitsXLSX(splits, names, "alice")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SplitsSheet, SharesSheet, ItemsSheet}, f.GetSheetList())

	rows, err := f.GetRows(SplitsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Split", rows[0][0])
	assert.Equal(t, []string{"s1", "tx1", "itemized", "50.00", "2023-11-14T22:13:20Z", "settled_by_me", "1", "2"}, rows[1])
	assert.Equal(t, "all_settled", rows[2][5])

	rows, err = f.GetRows(SharesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"s1", "Bob", "30.00", "60.00", "pending"}, rows[2])
	assert.Equal(t, "carol", rows[4][1], "unknown participants fall back to their ID")

	rows, err = f.GetRows(ItemsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"s1", "Pizza", "1", "40.00", "40.00", "Alice, Bob"}, rows[1])
	assert.Equal(t, "10.00", rows[2][4])
}

func TestBuildSplitsXLSXEmpty(t *testing.T) {
	data, err := BuildSplitsXLSX(nil, nil, "alice")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SharesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
