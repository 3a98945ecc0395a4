package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/backend/memory"
	"finboard/internal/backend/rest"
	"finboard/internal/charts"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	applog "finboard/internal/log"
)

// pageData feeds every page template.
type pageData struct {
	Page        string
	Options     []dashboard.Option
	Recent      []dashboard.Row
	History     []dashboard.Row
	Columns     []string
	PieMount    string
	LineMount   string
	Pie         []charts.Layer
	Line        []charts.Layer
	Form        core.TransactionInput
	Alert       string
	Predictions []core.Prediction
}

// snapshot reads the current render targets into a pageData.
func (s *Server) snapshot(page string) pageData {
	return pageData{
		Page:      page,
		Options:   s.views.categories.Options(),
		Recent:    s.views.recent.Rows(),
		History:   s.views.history.Rows(),
		Columns:   dashboard.HistoryColumns,
		PieMount:  charts.PieMount,
		LineMount: charts.LineMount,
		Pie:       s.board.Layers(charts.PieMount),
		Line:      s.board.Layers(charts.LineMount),
	}
}

// render executes name into a buffer so a template failure never leaves a
// half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		requestLogger(r).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldOperation, applog.OpRender,
			"template", name,
			applog.FieldError, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// backendStatus maps a failure of op to the status shown to the client.
// Only a rejected create is the client's fault; a bad amount in a listing
// is an upstream payload error.
func backendStatus(op string, err error) int {
	var se *rest.StatusError
	switch {
	case errors.Is(err, memory.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case op == applog.OpCreate && errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func backendMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "transaction not found"
	case http.StatusUnprocessableEntity:
		return "invalid amount"
	default:
		return "backend unavailable"
	}
}

// failBackend logs err and answers with the mapped status.
func failBackend(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := backendStatus(op, err)
	requestLogger(r).ErrorContext(r.Context(), "Backend call failed",
		applog.FieldOperation, op,
		applog.FieldStatusCode, status,
		applog.FieldError, err)
	http.Error(w, backendMessage(status), status)
}

func requestLogger(r *http.Request) *applog.Logger {
	return applog.FromContext(r.Context()).WithComponent(applog.ComponentHTTP)
}
