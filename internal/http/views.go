package http

import (
	"slices"
	"sync"

	"finboard/internal/charts"
	"finboard/internal/core"
	"finboard/internal/dashboard"
)

// optionsView holds the category selector options for the page.
type optionsView struct {
	mu   sync.RWMutex
	opts []dashboard.Option
}

func (v *optionsView) SetOptions(opts []dashboard.Option) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.opts = slices.Clone(opts)
}

func (v *optionsView) Options() []dashboard.Option {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.opts)
}

// rowsView holds the rows of the recent list or the history table.
type rowsView struct {
	mu   sync.RWMutex
	rows []dashboard.Row
}

func (v *rowsView) SetRows(rows []dashboard.Row) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rows = slices.Clone(rows)
}

func (v *rowsView) Rows() []dashboard.Row {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.rows)
}

// formView keeps the typed form values until a successful create resets it.
type formView struct {
	mu    sync.Mutex
	draft core.TransactionInput
}

func (v *formView) SetDraft(in core.TransactionInput) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = in
}

func (v *formView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = core.TransactionInput{}
}

func (v *formView) Draft() core.TransactionInput {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

// alertView holds the pending blocking message. Take consumes it.
type alertView struct {
	mu  sync.Mutex
	msg string
}

func (v *alertView) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.msg = msg
}

func (v *alertView) Take() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	msg := v.msg
	v.msg = ""
	return msg
}

// pageViews bundles the render targets that back the HTML pages.
type pageViews struct {
	categories optionsView
	recent     rowsView
	history    rowsView
	form       formView
	alerts     alertView
}

func (p *pageViews) bindings(board *charts.Board) dashboard.Views {
	return dashboard.Views{
		Categories: &p.categories,
		Recent:     &p.recent,
		History:    &p.history,
		Charts:     board,
		Form:       &p.form,
		Alerts:     &p.alerts,
	}
}
