// Package dashboard loads categories and transactions from the backend and
// renders them into injected view targets.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"finboard/internal/charts"
	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/ports"
)

// Load failures wrap one of these so callers can tell which fetch failed.
var (
	ErrCategories   = errors.New("load categories")
	ErrTransactions = errors.New("load transactions")
)

// Controller drives one dashboard. It is safe for concurrent use.
type Controller struct {
	categories ports.CategoryReader
	store      ports.TransactionStore
	views      Views
	logger     *applog.Logger

	// issued is the last reload token handed out.
	issued atomic.Uint64

	// mu serializes rendering and guards the fields below.
	mu       sync.Mutex
	rendered uint64
	charts   charts.Set
}

// New builds a controller. Both backend ports are required.
func New(cats ports.CategoryReader, store ports.TransactionStore, views Views, logger *applog.Logger) (*Controller, error) {
	if cats == nil || store == nil {
		return nil, errors.New("dashboard: category reader and transaction store are required")
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Controller{
		categories: cats,
		store:      store,
		views:      views,
		logger:     logger.WithComponent(applog.ComponentDashboard),
	}, nil
}

// Start runs the category load and the transaction load concurrently and
// waits for both. Each renders independently of the other's outcome; the
// returned error joins both failures.
func (c *Controller) Start(ctx context.Context) error {
	var catErr, txErr error
	var g errgroup.Group
	g.Go(func() error { catErr = c.LoadCategories(ctx); return nil })
	g.Go(func() error { txErr = c.LoadTransactions(ctx); return nil })
	_ = g.Wait()
	return errors.Join(catErr, txErr)
}

// LoadCategories fills the category selector.
func (c *Controller) LoadCategories(ctx context.Context) error {
	cats, err := c.categories.ListCategories(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "Category load failed",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
		return fmt.Errorf("%w: %w", ErrCategories, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.views.Categories != nil {
		c.views.Categories.SetOptions(CategoryOptions(cats))
	}
	c.logger.DebugContext(ctx, "Categories rendered", applog.FieldCount, len(cats))
	return nil
}

// LoadTransactions fetches every transaction and renders the recent list,
// the history table and the charts from the same result, in that order.
//
// Each call takes a token. A result is dropped when a reload issued later
// has already rendered.
func (c *Controller) LoadTransactions(ctx context.Context) error {
	token := c.issued.Add(1)

	txs, err := c.store.ListTransactions(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "Transaction load failed",
			applog.FieldOperation, applog.OpReload,
			applog.FieldReloadToken, token,
			applog.FieldError, err)
		return fmt.Errorf("%w: %w", ErrTransactions, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token < c.rendered {
		c.logger.DebugContext(ctx, "Stale reload discarded",
			applog.FieldReloadToken, token,
			"rendered_token", c.rendered)
		return nil
	}
	c.rendered = token

	if c.views.Recent != nil {
		c.views.Recent.SetRows(RecentRows(txs))
	}
	if c.views.History != nil {
		c.views.History.SetRows(HistoryRows(txs))
	}
	if err := c.renderCharts(txs); err != nil {
		c.logger.ErrorContext(ctx, "Chart render failed",
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err)
		return fmt.Errorf("%w: render charts: %w", ErrTransactions, err)
	}
	c.logger.DebugContext(ctx, "Transactions rendered",
		applog.FieldReloadToken, token,
		applog.FieldCount, len(txs))
	return nil
}

// renderCharts leaves the charts on screen untouched when txs is empty.
// Callers hold c.mu.
func (c *Controller) renderCharts(txs []core.Transaction) error {
	if len(txs) == 0 || c.views.Charts == nil {
		return nil
	}
	pie := charts.PieConfig(core.TotalsByCategory(txs))
	line := charts.LineConfig(core.TotalsByMonth(txs))
	return c.charts.Replace(c.views.Charts, pie, line)
}

// Submit validates the form payload, creates the transaction, resets the
// form and reloads. A missing description or amount shows the validation
// alert and returns core.ErrMissingRequired without contacting the backend.
// An error wrapping ErrTransactions means the create succeeded and only the
// reload failed.
func (c *Controller) Submit(ctx context.Context, in core.TransactionInput) error {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		c.logger.WarnContext(ctx, "Submission blocked",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldError, err)
		if c.views.Alerts != nil {
			c.views.Alerts.Alert(core.ValidationMessage)
		}
		return err
	}

	if err := c.store.CreateTransaction(ctx, in); err != nil {
		c.logger.ErrorContext(ctx, "Create transaction failed",
			applog.NewFields().
				WithTransaction(in.Description, in.Amount, in.Category).
				WithOperation(applog.OpCreate).
				WithError(err).
				ToSlice()...)
		return fmt.Errorf("create transaction: %w", err)
	}
	c.logger.InfoContext(ctx, "Transaction created",
		applog.NewFields().
			WithTransaction(in.Description, in.Amount, in.Category).
			WithOperation(applog.OpCreate).
			ToSlice()...)

	if c.views.Form != nil {
		c.mu.Lock()
		c.views.Form.Reset()
		c.mu.Unlock()
	}
	return c.LoadTransactions(ctx)
}

// Delete removes the transaction with id and reloads. As with Submit, an
// error wrapping ErrTransactions comes from the reload.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.store.DeleteTransaction(ctx, id); err != nil {
		c.logger.ErrorContext(ctx, "Delete transaction failed",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	c.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id)
	return c.LoadTransactions(ctx)
}

// Transactions fetches the current collection without rendering it.
func (c *Controller) Transactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := c.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}
