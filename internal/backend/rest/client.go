// Package rest implements the dashboard ports against the finance REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"finboard/internal/core"
	applog "finboard/internal/log"
)

const (
	categoriesPath   = "/api/categories"
	transactionsPath = "/api/transactions"

	// maxErrorBody bounds how much of a failed response is kept in errors.
	maxErrorBody = 512
)

// StatusError reports a non-2xx answer from the backend.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	logger  *applog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is used
// as is, without tracing instrumentation.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every backend request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *applog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tracer:  otel.Tracer("finboard/backend/rest"),
		logger:  applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentBackend),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// ListCategories fetches GET /api/categories.
func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	ctx, span := c.tracer.Start(ctx, "Backend.ListCategories")
	defer span.End()

	var cats []core.Category
	if err := c.getJSON(ctx, categoriesPath, &cats); err != nil {
		recordError(span, err, "list categories failed")
		return nil, fmt.Errorf("list categories: %w", err)
	}
	span.SetAttributes(attribute.Int("categories.count", len(cats)))
	return cats, nil
}

// ListTransactions fetches GET /api/transactions without parameters.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	ctx, span := c.tracer.Start(ctx, "Backend.ListTransactions")
	defer span.End()

	var txs []core.Transaction
	if err := c.getJSON(ctx, transactionsPath, &txs); err != nil {
		recordError(span, err, "list transactions failed")
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	span.SetAttributes(attribute.Int("transactions.count", len(txs)))
	return txs, nil
}

// CreateTransaction posts the form payload. The response body is ignored.
func (c *Client) CreateTransaction(ctx context.Context, in core.TransactionInput) error {
	ctx, span := c.tracer.Start(ctx, "Backend.CreateTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("date", in.Date),
		attribute.String("description", in.Description),
		attribute.String("amount", in.Amount),
		attribute.String("category", in.Category),
	)

	payload, err := json.Marshal(in)
	if err != nil {
		recordError(span, err, "encode payload failed")
		return fmt.Errorf("encode transaction: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transactionsPath, bytes.NewReader(payload))
	if err != nil {
		recordError(span, err, "unable to create request")
		return fmt.Errorf("create transaction: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.send(req, nil); err != nil {
		recordError(span, err, "create transaction failed")
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// DeleteTransaction sends DELETE /api/transactions?id={id}.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	ctx, span := c.tracer.Start(ctx, "Backend.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))

	q := url.Values{"id": []string{strconv.FormatInt(id, 10)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+transactionsPath+"?"+q.Encode(), nil)
	if err != nil {
		recordError(span, err, "unable to create request")
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if err := c.send(req, nil); err != nil {
		recordError(span, err, "delete transaction failed")
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

// send executes req and decodes a 2xx JSON body into out when out is non-nil.
// Otherwise the body is drained so the connection can be reused.
func (c *Client) send(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(req.Context(), "Backend request failed",
			applog.FieldMethod, req.Method,
			applog.FieldPath, req.URL.Path,
			applog.FieldError, err)
		return err
	}
	defer resp.Body.Close()

	c.logger.DebugContext(req.Context(), "Backend request completed",
		applog.FieldMethod, req.Method,
		applog.FieldPath, req.URL.Path,
		applog.FieldStatusCode, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     req.Method,
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func recordError(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}
