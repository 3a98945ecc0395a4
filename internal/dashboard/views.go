package dashboard

import (
	"strconv"

	"finboard/internal/charts"
	"finboard/internal/core"
)

// RecentLimit caps the recent-activity list.
const RecentLimit = 5

// BlankOptionLabel is shown for the "no category" choice.
const BlankOptionLabel = "Select Category"

type (
	Option struct {
		Value string
		Label string
	}

	// Row is one rendered entry. Cells are display strings.
	Row struct {
		ID    int64
		Cells []string
	}

	// OptionsTarget receives the category selector options.
	OptionsTarget interface {
		SetOptions(opts []Option)
	}

	// RowsTarget receives rows for the recent list or the history table.
	RowsTarget interface {
		SetRows(rows []Row)
	}

	// FormTarget is the entry form; Reset clears it after a successful create.
	FormTarget interface {
		Reset()
	}

	// Alerter shows a blocking message to the user.
	Alerter interface {
		Alert(msg string)
	}

	// Views are the render targets the controller writes to. Nil targets
	// are skipped.
	Views struct {
		Categories OptionsTarget
		Recent     RowsTarget
		History    RowsTarget
		Charts     charts.Engine
		Form       FormTarget
		Alerts     Alerter
	}
)

// CategoryOptions builds the selector: a blank option then one per category.
func CategoryOptions(cats []core.Category) []Option {
	opts := make([]Option, 0, len(cats)+1)
	opts = append(opts, Option{Value: "", Label: BlankOptionLabel})
	for _, c := range cats {
		opts = append(opts, Option{Value: c.Name, Label: c.Label()})
	}
	return opts
}

// RecentRows renders the first RecentLimit transactions as cards with cells
// amount, description and a detail line. The detail line labels the
// merchant as "Amount".
func RecentRows(txs []core.Transaction) []Row {
	n := min(len(txs), RecentLimit)
	rows := make([]Row, 0, n)
	for _, t := range txs[:n] {
		rows = append(rows, Row{
			ID: t.ID,
			Cells: []string{
				t.Amount.String(),
				t.Description,
				"Amount: " + core.FormatRupeesText(t.Merchant),
			},
		})
	}
	return rows
}

// HistoryColumns names the history table cells in order.
var HistoryColumns = []string{"Date", "Description", "Merchant", "Amount", "Category"}

// HistoryRows renders every transaction in received order.
func HistoryRows(txs []core.Transaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, Row{
			ID: t.ID,
			Cells: []string{
				t.Date,
				t.Description,
				core.FormatRupeesText(t.Merchant),
				t.Amount.String(),
				t.Category,
			},
		})
	}
	return rows
}

// DeleteKey is the delete control value for a row.
func (r Row) DeleteKey() string {
	return strconv.FormatInt(r.ID, 10)
}
