package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"finboard/internal/core"
	applog "finboard/internal/log"
)

const mockBase = "http://api.mock"

func newMockClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	quiet := applog.Discard().WithComponent(applog.ComponentBackend)
	c, err := New(mockBase+"/", WithHTTPClient(&http.Client{Transport: mt}), WithLogger(quiet))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, mt
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://host", "://bad"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
	c, err := New("https://example.com/")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com", c.BaseURL())
}

func TestListCategories(t *testing.T) {
	c, mt := newMockClient(t)
	mt.RegisterResponder(http.MethodGet, mockBase+"/api/categories",
		func(req *http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(200, []map[string]string{
				{"name": "Food", "icon": "🍔", "color": "#ff7043"},
				{"name": "Bills", "icon": "💡"},
			})
		})

	cats, err := c.ListCategories(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []core.Category{
		{Name: "Food", Icon: "🍔", Color: "#ff7043"},
		{Name: "Bills", Icon: "💡"},
	}, cats)
}

func TestListTransactions(t *testing.T) {
	c, mt := newMockClient(t)
	mt.RegisterResponder(http.MethodGet, mockBase+"/api/transactions",
		func(req *http.Request) (*http.Response, error) {
			assert.Empty(t, req.URL.RawQuery)
			return httpmock.NewStringResponse(200, `[
				{"id": 2, "date": "2024-02-01", "description": "bus", "merchant": "BMTC", "amount": 30, "category": "Transport"},
				{"id": 1, "date": "2024-01-15", "description": "lunch", "merchant": "Cafe", "amount": 120.5, "category": null}
			]`), nil
		})

	txs, err := c.ListTransactions(context.Background())
	assert.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Equal(t, int64(2), txs[0].ID)
	assert.Equal(t, core.Amount(120.5), txs[1].Amount)
	assert.Equal(t, "", txs[1].Category)
}

func TestListTransactionsErrors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		status    int
	}{
		{"ServerError", httpmock.NewStringResponder(503, "Service Error"), 503},
		{"NotJSON", httpmock.NewStringResponder(200, "Server Error"), 0},
		{"TransportError", httpmock.NewErrorResponder(errors.New("connection refused")), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mt := newMockClient(t)
			mt.RegisterResponder(http.MethodGet, mockBase+"/api/transactions", tt.responder)

			txs, err := c.ListTransactions(context.Background())
			assert.Error(t, err)
			assert.Nil(t, txs)

			var se *StatusError
			if tt.status != 0 {
				assert.True(t, errors.As(err, &se))
				assert.Equal(t, tt.status, se.StatusCode)
				assert.Equal(t, "Service Error", se.Body)
			} else {
				assert.False(t, errors.As(err, &se))
			}
		})
	}
}

func TestCreateTransaction(t *testing.T) {
	c, mt := newMockClient(t)
	var body map[string]any
	var contentType string
	mt.RegisterResponder(http.MethodPost, mockBase+"/api/transactions",
		func(req *http.Request) (*http.Response, error) {
			contentType = req.Header.Get("Content-Type")
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return httpmock.NewStringResponse(400, err.Error()), nil
			}
			return httpmock.NewJsonResponse(200, map[string]string{"status": "ok", "category": "Food"})
		})

	err := c.CreateTransaction(context.Background(), core.TransactionInput{
		Date:        "2024-03-01",
		Description: "dinner",
		Merchant:    "Dhaba",
		Amount:      "450",
		Category:    "",
	})
	assert.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, map[string]any{
		"date":        "2024-03-01",
		"description": "dinner",
		"merchant":    "Dhaba",
		"amount":      "450",
		"category":    "",
	}, body)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestCreateTransactionNon2xx(t *testing.T) {
	c, mt := newMockClient(t)
	mt.RegisterResponder(http.MethodPost, mockBase+"/api/transactions", httpmock.NewStringResponder(500, "boom"))

	err := c.CreateTransaction(context.Background(), core.TransactionInput{Description: "x", Amount: "1"})
	var se *StatusError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, http.MethodPost, se.Method)
}

func TestDeleteTransaction(t *testing.T) {
	c, mt := newMockClient(t)
	var gotID string
	mt.RegisterResponder(http.MethodDelete, mockBase+"/api/transactions",
		func(req *http.Request) (*http.Response, error) {
			gotID = req.URL.Query().Get("id")
			return httpmock.NewJsonResponse(200, map[string]string{"status": "deleted"})
		})

	assert.NoError(t, c.DeleteTransaction(context.Background(), 42))
	assert.Equal(t, "42", gotID)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}
