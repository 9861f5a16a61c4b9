package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidBudget = errors.New("invalid budget goal")

// BudgetGoal is a per-category spending ceiling. Spent is tracked
// independently of the transaction set.
type BudgetGoal struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Limit    float64  `json:"limit"`
	Spent    float64  `json:"spent"`
}

// NewBudgetGoal builds a goal with the category mapped into the closed set.
func NewBudgetGoal(id, category string, limit, spent float64) (BudgetGoal, error) {
	b := BudgetGoal{
		ID:       id,
		Category: ParseCategory(category),
		Limit:    limit,
		Spent:    spent,
	}
	if err := b.Validate(); err != nil {
		return BudgetGoal{}, err
	}
	return b, nil
}

// Validate rejects goals a user must not be able to save.
func (b BudgetGoal) Validate() error {
	switch {
	case b.ID == "":
		return fmt.Errorf("%w: %w", ErrInvalidBudget, ErrMissingID)
	case !b.Category.IsValid():
		return fmt.Errorf("%w: %w", ErrInvalidBudget, ErrInvalidCategory)
	case !finite(b.Limit) || b.Limit <= 0:
		return fmt.Errorf("%w: limit must be positive, got %v", ErrInvalidBudget, b.Limit)
	case !finite(b.Spent) || b.Spent < 0:
		return fmt.Errorf("%w: spent must be non-negative, got %v", ErrInvalidBudget, b.Spent)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
