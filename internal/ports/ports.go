package ports

import (
	"context"

	"finboard/internal/core"
)

// Ports for the backend the dashboard reads from and mutates.
type (
	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	// TransactionReader returns the full, unfiltered transaction collection.
	TransactionReader interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		CreateTransaction(ctx context.Context, in core.TransactionInput) error
		DeleteTransaction(ctx context.Context, id int64) error
	}

	TransactionStore interface {
		TransactionReader
		TransactionWriter
	}
)
