package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/civil"
)

// DefaultDescription labels entries created without a description.
const DefaultDescription = "Entry"

var (
	ErrInvalidAmount   = errors.New("amount must be a finite number")
	ErrInvalidDate     = errors.New("date is not a valid calendar date")
	ErrInvalidType     = errors.New("type must be income or expense")
	ErrInvalidCategory = errors.New("category is not in the category set")
	ErrInvalidSource   = errors.New("source must be manual, receipt or bank_sync")
	ErrMissingID       = errors.New("id is required")
)

// TransactionType carries the sign applied when aggregating.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// ParseType accepts the two literals, case-insensitively.
func ParseType(s string) (TransactionType, bool) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, true
	case TypeExpense:
		return TypeExpense, true
	}
	return "", false
}

// Source tags the channel a transaction came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceReceipt  Source = "receipt"
	SourceBankSync Source = "bank_sync"
)

// ParseSource maps a provenance tag, falling back to manual.
func ParseSource(s string) Source {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if src.IsValid() {
		return src
	}
	return SourceManual
}

// IsValid reports whether s is a known provenance tag.
func (s Source) IsValid() bool {
	return s == SourceManual || s == SourceReceipt || s == SourceBankSync
}

// Transaction is a single immutable ledger entry.
// Amount is always a non-negative magnitude; Type carries the sign.
type Transaction struct {
	ID          string          `json:"id"`
	Date        civil.Date      `json:"date"`
	Amount      float64         `json:"amount"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Source      Source          `json:"source"`
}

// TransactionDraft is the loosely filled input to NewTransaction.
type TransactionDraft struct {
	Date        *civil.Date
	Amount      float64
	Description string
	Category    string
	Type        string
	Source      Source
}

// NewTransaction is the only constructor for ledger entries. It applies the
// defaults (today, "Entry", Other, expense, manual), stores |amount| and
// validates the result.
func NewTransaction(d TransactionDraft, id string, today civil.Date) (Transaction, error) {
	if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) {
		return Transaction{}, fmt.Errorf("NewTransaction: %w", ErrInvalidAmount)
	}

	date := today
	if d.Date != nil && d.Date.IsValid() {
		date = *d.Date
	}

	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		desc = DefaultDescription
	}

	typ, ok := ParseType(d.Type)
	if !ok {
		typ = TypeExpense
	}

	src := d.Source
	if !src.IsValid() {
		src = SourceManual
	}

	tx := Transaction{
		ID:          id,
		Date:        date,
		Amount:      math.Abs(d.Amount),
		Category:    ParseCategory(d.Category),
		Description: desc,
		Type:        typ,
		Source:      src,
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, fmt.Errorf("NewTransaction: %w", err)
	}
	return tx, nil
}

// Validate is the single validity predicate for a stored transaction.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount < 0 {
		return ErrInvalidAmount
	}
	if !t.Date.IsValid() {
		return ErrInvalidDate
	}
	if !t.Category.IsValid() {
		return ErrInvalidCategory
	}
	if t.Type != TypeIncome && t.Type != TypeExpense {
		return ErrInvalidType
	}
	if !t.Source.IsValid() {
		return ErrInvalidSource
	}
	return nil
}

// Signed returns the amount with the sign implied by the type.
func (t Transaction) Signed() float64 {
	if t.Type == TypeIncome {
		return t.Amount
	}
	return -t.Amount
}
