package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

// DefaultWarnThreshold is the spent/limit ratio above which a budget is flagged.
const DefaultWarnThreshold = 0.85

// Engine holds the tunables of the metrics computation. The zero value uses
// DefaultWarnThreshold.
type Engine struct {
	WarnThreshold float64
}

// BudgetProgress is the derived state of one budget goal.
type BudgetProgress struct {
	BudgetID    string          `json:"budgetId"`
	Category    domain.Category `json:"category"`
	Limit       float64         `json:"limit"`
	Spent       float64         `json:"spent"`
	PercentUsed float64         `json:"percentUsed"`
	OverLimit   bool            `json:"overLimit"`
}

// ComputeBudgetProgress computes progress with the default engine.
func ComputeBudgetProgress(budgets []domain.BudgetGoal) []BudgetProgress {
	return Engine{}.ComputeBudgetProgress(budgets)
}

// ComputeBudgetProgress reports percent used (capped at 100) and whether the
// raw ratio exceeds the warn threshold. A non-positive limit counts as fully
// used and over limit.
func (e Engine) ComputeBudgetProgress(budgets []domain.BudgetGoal) []BudgetProgress {
	threshold := decimal.NewFromFloat(e.threshold())
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	out := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		p := BudgetProgress{
			BudgetID: b.ID,
			Category: b.Category,
			Limit:    b.Limit,
			Spent:    b.Spent,
		}

		limit := decimal.NewFromFloat(b.Limit)
		if !limit.IsPositive() {
			p.PercentUsed = 100
			p.OverLimit = true
			out = append(out, p)
			continue
		}

		ratio := decimal.NewFromFloat(b.Spent).Div(limit)
		p.PercentUsed = decimal.Min(ratio, one).Mul(hundred).InexactFloat64()
		p.OverLimit = ratio.GreaterThan(threshold)
		out = append(out, p)
	}
	return out
}

func (e Engine) threshold() float64 {
	if e.WarnThreshold <= 0 {
		return DefaultWarnThreshold
	}
	return e.WarnThreshold
}
