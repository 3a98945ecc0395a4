package core

import (
	"reflect"
	"testing"
)

func TestTotalsByCategoryFirstSeenOrder(t *testing.T) {
	txs := []Transaction{
		{Category: "C1", Amount: 60},
		{Category: "C2", Amount: 20},
		{Category: "C1", Amount: 40},
		{Category: "C2", Amount: 30},
	}
	got := TotalsByCategory(txs)
	if !reflect.DeepEqual(Labels(got), []string{"C1", "C2"}) {
		t.Fatalf("unexpected labels %v", Labels(got))
	}
	if !reflect.DeepEqual(Totals(got), []float64{100, 50}) {
		t.Fatalf("unexpected totals %v", Totals(got))
	}
}

func TestTotalsByCategoryKeepsEmptyCategory(t *testing.T) {
	got := TotalsByCategory([]Transaction{{Category: "", Amount: 5}, {Category: "Food", Amount: 1}})
	if len(got) != 2 || got[0].Label != "" || got[0].Total != 5 {
		t.Fatalf("unexpected buckets %+v", got)
	}
}

func TestTotalsByMonth(t *testing.T) {
	txs := []Transaction{
		{Date: "2024-01-15", Amount: 10},
		{Date: "2024-01-20", Amount: 15},
		{Date: "2024-02-01", Amount: 7},
	}
	got := TotalsByMonth(txs)
	want := []Bucket{{Label: "2024-01", Total: 25}, {Label: "2024-02", Total: 7}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestTotalsByMonthNotSorted(t *testing.T) {
	txs := []Transaction{
		{Date: "2024-03-02", Amount: 1},
		{Date: "2024-01-05", Amount: 2},
		{Date: "2024-03-09", Amount: 3},
	}
	got := Labels(TotalsByMonth(txs))
	if !reflect.DeepEqual(got, []string{"2024-03", "2024-01"}) {
		t.Fatalf("expected encounter order, got %v", got)
	}
}

func TestTotalsEmpty(t *testing.T) {
	if got := TotalsByCategory(nil); len(got) != 0 {
		t.Fatalf("expected no buckets, got %v", got)
	}
	if got := TotalsByMonth([]Transaction{}); len(got) != 0 {
		t.Fatalf("expected no buckets, got %v", got)
	}
}

func TestForecast(t *testing.T) {
	txs := []Transaction{
		{Category: "Food", Amount: 100},
		{Category: "Bills", Amount: 33.33},
		{Category: "Food", Amount: 50},
	}
	got := Forecast(txs)
	want := []Prediction{{Category: "Food", Amount: 165}, {Category: "Bills", Amount: 36.66}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}
