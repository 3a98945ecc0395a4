package http

import (
	"encoding/csv"
	"errors"
	"net/http"

	"finboard/internal/core"
	"finboard/internal/dashboard"
	applog "finboard/internal/log"
)

// handleIndex loads categories and transactions concurrently and renders
// the full dashboard. Only a failed transaction load fails the page; a
// failed category load leaves the selector as it was.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	err := s.controller.Start(r.Context())
	if errors.Is(err, dashboard.ErrTransactions) {
		failBackend(w, r, applog.OpReload, err)
		return
	}
	if err != nil {
		requestLogger(r).WarnContext(r.Context(), "Category selector left untouched",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
	}
	s.render(w, r, http.StatusOK, "index.html", s.snapshot("index"))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.LoadTransactions(r.Context()); err != nil {
		failBackend(w, r, applog.OpReload, err)
		return
	}
	s.render(w, r, http.StatusOK, "history.html", s.snapshot("history"))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.LoadTransactions(r.Context()); err != nil {
		failBackend(w, r, applog.OpReload, err)
		return
	}
	s.render(w, r, http.StatusOK, "analytics.html", s.snapshot("analytics"))
}

// handlePredictions renders next-period spend per category.
func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.controller.Transactions(r.Context())
	if err != nil {
		failBackend(w, r, applog.OpList, err)
		return
	}
	data := s.snapshot("predictions")
	data.Predictions = core.Forecast(txs)
	s.render(w, r, http.StatusOK, "predictions.html", data)
}

// handleExport streams every transaction as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	txs, err := s.controller.Transactions(r.Context())
	if err != nil {
		failBackend(w, r, applog.OpExport, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "description", "merchant", "amount", "category"})
	for _, t := range txs {
		_ = cw.Write([]string{t.Date, t.Description, t.Merchant, t.Amount.String(), t.Category})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		requestLogger(r).ErrorContext(r.Context(), "CSV export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		return
	}
	requestLogger(r).InfoContext(r.Context(), "Transactions exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(txs))
}

// handleCreateTransaction submits the entry form. A blocked submission
// re-renders the page with the alert and the typed values.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		requestLogger(r).WarnContext(r.Context(), "Parse body error", applog.FieldError, err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	in := p.TransactionInput()

	s.mutate.Lock()
	defer s.mutate.Unlock()

	s.views.form.SetDraft(in)
	err := s.controller.Submit(r.Context(), in)
	if errors.Is(err, core.ErrMissingRequired) {
		alert := s.views.alerts.Take()
		if p.IsJSON() {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": alert})
			return
		}
		s.ensureCategories(r)
		data := s.snapshot("index")
		data.Form = s.views.form.Draft()
		data.Alert = alert
		s.render(w, r, http.StatusUnprocessableEntity, "index.html", data)
		return
	}
	if errors.Is(err, dashboard.ErrTransactions) {
		// The entry is stored; only the reload failed.
		requestLogger(r).WarnContext(r.Context(), "Reload after create failed",
			applog.FieldOperation, applog.OpReload,
			applog.FieldError, err)
		if p.IsJSON() {
			writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		failBackend(w, r, applog.OpCreate, err)
		return
	}

	if p.IsJSON() {
		writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
		return
	}
	s.ensureCategories(r)
	s.render(w, r, http.StatusOK, "index.html", s.snapshot("index"))
}

// handleDeleteTransaction deletes by id. DELETE answers 204; the form post
// redirects back to the page it came from.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id, err := ParseTransactionID(r, p)
	if err != nil {
		requestLogger(r).WarnContext(r.Context(), "Invalid delete request",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldError, err)
		http.Error(w, "invalid transaction id", http.StatusBadRequest)
		return
	}

	err = s.controller.Delete(r.Context(), id)
	if errors.Is(err, dashboard.ErrTransactions) {
		requestLogger(r).WarnContext(r.Context(), "Reload after delete failed",
			applog.FieldOperation, applog.OpReload,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
	} else if err != nil {
		failBackend(w, r, applog.OpDelete, err)
		return
	}

	if r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, returnPath(p.Get("return")), http.StatusSeeOther)
}

// ensureCategories fills the selector when no page load has done it yet.
func (s *Server) ensureCategories(r *http.Request) {
	if len(s.views.categories.Options()) > 0 {
		return
	}
	if err := s.controller.LoadCategories(r.Context()); err != nil {
		requestLogger(r).WarnContext(r.Context(), "Category selector left empty", applog.FieldError, err)
	}
}

// returnPath allows redirects only to the dashboard pages.
func returnPath(p string) string {
	switch p {
	case "/history", "/analytics":
		return p
	default:
		return "/"
	}
}
