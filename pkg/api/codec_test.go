package api

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCodecKeepsMoneyExact(t *testing.T) {
	var c Codec
	if c.Name() != "json" {
		t.Fatalf("Name() = %q", c.Name())
	}

	in := CreateTransactionRequest{Amount: decimal.RequireFromString("10.10"), Merchant: "Cafe", Date: "2026-01-02"}
	data, err := c.Marshal(&in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), `"amount":"10.1"`) {
		t.Errorf("amount should be a decimal string, got %s", data)
	}

	var out CreateTransactionRequest
	if err := c.Unmarshal([]byte(`{"amount":"0.10","merchant":"Cafe"}`), &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !out.Amount.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("amount = %s", out.Amount)
	}

	// bare JSON numbers are accepted too
	if err := c.Unmarshal([]byte(`{"amount":3.35}`), &out); err != nil {
		t.Fatalf("Unmarshal() number error: %v", err)
	}
	if !out.Amount.Equal(decimal.RequireFromString("3.35")) {
		t.Errorf("amount = %s", out.Amount)
	}

	if err := c.Unmarshal(nil, &out); err != nil {
		t.Errorf("empty body should decode to zero value, got %v", err)
	}
}
