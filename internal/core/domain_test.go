package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestTransactionInputValidate(t *testing.T) {
	cases := []struct {
		in TransactionInput
		ok bool
	}{
		{TransactionInput{Description: "tea", Amount: "20"}, true},
		{TransactionInput{Description: "tea", Amount: "20", Category: ""}, true},
		{TransactionInput{Description: "", Amount: "20"}, false},
		{TransactionInput{Description: "tea", Amount: ""}, false},
		{TransactionInput{Description: "   ", Amount: "20"}, false},
		{TransactionInput{}, false},
	}
	for i, tc := range cases {
		err := tc.in.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && !errors.Is(err, ErrMissingRequired) {
			t.Fatalf("case %d expected ErrMissingRequired, got %v", i, err)
		}
	}
}

func TestTransactionInputNormalize(t *testing.T) {
	in := TransactionInput{Description: "  lunch\x00 ", Amount: " 12 ", Merchant: "cafe\x07"}
	got := in.Normalize()
	if got.Description != "lunch" || got.Amount != "12" || got.Merchant != "cafe" {
		t.Fatalf("unexpected normalize result: %+v", got)
	}
}

func TestTransactionDecode(t *testing.T) {
	raw := `[
		{"id": 1, "date": "2024-01-15", "description": "a", "merchant": "m", "amount": 12.5, "category": "Food"},
		{"id": 2, "date": "2024-02-01", "description": "b", "merchant": "n", "amount": "40", "category": null}
	]`
	var txs []Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Amount != 12.5 || txs[0].Category != "Food" {
		t.Fatalf("unexpected first transaction: %+v", txs[0])
	}
	if txs[1].Amount != 40 || txs[1].Category != "" {
		t.Fatalf("unexpected second transaction: %+v", txs[1])
	}
}

func TestAmountDecodeRejectsGarbage(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`"abc"`), &a); err == nil {
		t.Fatalf("expected error for non-numeric string")
	}
	if err := json.Unmarshal([]byte(`true`), &a); err == nil {
		t.Fatalf("expected error for boolean")
	}
}

func TestTransactionMonth(t *testing.T) {
	cases := map[string]string{
		"2024-01-15": "2024-01",
		"2024-02":    "2024-02",
		"2024":       "2024",
		"":           "",
	}
	for date, want := range cases {
		if got := (Transaction{Date: date}).Month(); got != want {
			t.Fatalf("%q: expected %q, got %q", date, want, got)
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	c := Category{Name: "Food", Icon: "🍔"}
	if c.Label() != "🍔 Food" {
		t.Fatalf("unexpected label %q", c.Label())
	}
}
