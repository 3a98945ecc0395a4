package core

// Bucket is one aggregated total. Slices of buckets keep first-seen order.
type Bucket struct {
	Label string
	Total Amount
}

// Prediction is a next-period estimate for one category.
type Prediction struct {
	Category string
	Amount   Amount
}

// ForecastFactor is applied to category totals to estimate the next period.
const ForecastFactor = 1.10

// TotalsByCategory sums amounts per category in order of first appearance.
func TotalsByCategory(txs []Transaction) []Bucket {
	return aggregate(txs, func(t Transaction) string { return t.Category })
}

// TotalsByMonth sums amounts per YYYY-MM in order of first appearance.
// The result is not sorted chronologically.
func TotalsByMonth(txs []Transaction) []Bucket {
	return aggregate(txs, Transaction.Month)
}

// Forecast returns per-category totals scaled by ForecastFactor.
func Forecast(txs []Transaction) []Prediction {
	totals := TotalsByCategory(txs)
	out := make([]Prediction, 0, len(totals))
	for _, b := range totals {
		out = append(out, Prediction{
			Category: b.Label,
			Amount:   Round2(b.Total * ForecastFactor),
		})
	}
	return out
}

func aggregate(txs []Transaction, key func(Transaction) string) []Bucket {
	index := make(map[string]int, len(txs))
	var out []Bucket
	for _, t := range txs {
		k := key(t)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Bucket{Label: k})
		}
		out[i].Total += t.Amount
	}
	return out
}

// Labels returns bucket labels in order.
func Labels(buckets []Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Label
	}
	return out
}

// Totals returns bucket totals in order.
func Totals(buckets []Bucket) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = float64(b.Total)
	}
	return out
}
