package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type (
	// Amount is a transaction value as the backend reports it.
	Amount float64

	Transaction struct {
		ID          int64  `json:"id"`
		Date        string `json:"date"` // YYYY-MM-DD
		Description string `json:"description"`
		Merchant    string `json:"merchant"`
		Amount      Amount `json:"amount"`
		Category    string `json:"category"`
	}

	Category struct {
		Name  string `json:"name"`
		Icon  string `json:"icon"`
		Color string `json:"color,omitempty"`
	}

	// TransactionInput is the create payload built from the entry form.
	// Amount stays as typed; the backend coerces it.
	TransactionInput struct {
		Date        string `json:"date"`
		Description string `json:"description"`
		Merchant    string `json:"merchant"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
	}
)

var (
	ErrMissingRequired = errors.New("description and amount required")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// ValidationMessage is shown to the user when a submission is blocked.
const ValidationMessage = "Description & Amount required!"

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseAmount(s)
		if err != nil {
			return err
		}
		*a = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(b))
	}
	*a = Amount(f)
	return nil
}

// String formats the amount in its shortest decimal form.
func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', -1, 64)
}

// UnmarshalJSON decodes a transaction, mapping a null category to "".
func (t *Transaction) UnmarshalJSON(b []byte) error {
	type wire struct {
		ID          int64   `json:"id"`
		Date        *string `json:"date"`
		Description *string `json:"description"`
		Merchant    *string `json:"merchant"`
		Amount      Amount  `json:"amount"`
		Category    *string `json:"category"`
	}
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*t = Transaction{
		ID:          w.ID,
		Date:        deref(w.Date),
		Description: deref(w.Description),
		Merchant:    deref(w.Merchant),
		Amount:      w.Amount,
		Category:    deref(w.Category),
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Month returns the YYYY-MM bucket of the transaction date.
func (t Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// Label is the selector text for a category.
func (c Category) Label() string {
	return c.Icon + " " + c.Name
}

// Normalize trims the form fields and strips control characters.
func (in TransactionInput) Normalize() TransactionInput {
	return TransactionInput{
		Date:        SanitizeInput(in.Date),
		Description: SanitizeInput(in.Description),
		Merchant:    SanitizeInput(in.Merchant),
		Amount:      SanitizeInput(in.Amount),
		Category:    SanitizeInput(in.Category),
	}
}

// Validate only requires description and amount. Category may be empty.
func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Amount) == "" {
		return ErrMissingRequired
	}
	return nil
}

// SanitizeInput removes control characters except tab, newline and
// carriage return, and trims surrounding whitespace.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
