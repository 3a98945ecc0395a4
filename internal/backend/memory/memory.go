// Package memory is an in-process backend for local runs and tests.
package memory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"finboard/internal/core"
)

// ErrNotFound is returned when deleting an unknown id.
var ErrNotFound = errors.New("transaction not found")

// DefaultCategories matches the category list the finance API serves.
var DefaultCategories = []core.Category{
	{Name: "Food", Icon: "🍔", Color: "#ff7043"},
	{Name: "Transport", Icon: "🚌", Color: "#42a5f5"},
	{Name: "Groceries", Icon: "🛒", Color: "#66bb6a"},
	{Name: "Shopping", Icon: "🛍️", Color: "#ef5350"},
	{Name: "Bills", Icon: "💡", Color: "#ffb74d"},
	{Name: "Entertainment", Icon: "🎬", Color: "#ab47bc"},
	{Name: "Health", Icon: "💊", Color: "#26a69a"},
	{Name: "Others", Icon: "🔖", Color: "#90a4ae"},
}

type Store struct {
	mu     sync.Mutex
	cats   []core.Category
	items  []core.Transaction
	nextID int64
}

func New(cats []core.Category) *Store {
	return &Store{cats: dedupe(cats), nextID: 1}
}

// NewFromFiles seeds categories from base/seed_categories.txt, one
// "icon name" pair per line. Missing or empty files fall back to
// DefaultCategories.
func NewFromFiles(base string) *Store {
	cats := readCategories(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = DefaultCategories
	}
	return New(cats)
}

// ListCategories returns a copy of the category list.
func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

// ListTransactions returns transactions newest date first; ties keep
// insertion order.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	out := append([]core.Transaction(nil), s.items...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// CreateTransaction stores the payload under a new id.
func (s *Store) CreateTransaction(_ context.Context, in core.TransactionInput) error {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", in.Amount, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, core.Transaction{
		ID:          s.nextID,
		Date:        in.Date,
		Description: in.Description,
		Merchant:    in.Merchant,
		Amount:      amount,
		Category:    in.Category,
	})
	s.nextID++
	return nil
}

// DeleteTransaction removes the transaction with id.
func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %d: %w", id, ErrNotFound)
}

func readCategories(path string) []core.Category {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.Category
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		icon, name, ok := strings.Cut(line, " ")
		if !ok {
			out = append(out, core.Category{Name: line})
			continue
		}
		out = append(out, core.Category{Name: strings.TrimSpace(name), Icon: icon})
	}
	return dedupe(out)
}

// dedupe drops blank and repeated names, keeping first occurrence order.
func dedupe(in []core.Category) []core.Category {
	seen := map[string]struct{}{}
	out := make([]core.Category, 0, len(in))
	for _, c := range in {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out
}
