// Package metrics derives summaries from the ledger. Everything here is a
// pure function of its inputs and is recomputed on every read.
package metrics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

// FinancialSummary is a derived view; it is never persisted.
type FinancialSummary struct {
	TotalBalance          float64 `json:"totalBalance"`
	MonthlyIncome         float64 `json:"monthlyIncome"`
	MonthlyExpenses       float64 `json:"monthlyExpenses"`
	SavingsRate           float64 `json:"savingsRate"`
	NetWorth              float64 `json:"netWorth"`
	ProjectedAnnualIncome float64 `json:"projectedAnnualIncome"`
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category domain.Category `json:"category"`
	Total    float64         `json:"total"`
}

// ComputeSummary computes the summary with the default engine.
func ComputeSummary(txs []domain.Transaction, profile domain.UserProfile) FinancialSummary {
	return Engine{}.ComputeSummary(txs, profile)
}

// ComputeSummary folds the transactions and the profile into a FinancialSummary.
// An empty ledger yields zero balance and expenses; savings rate is 0 when
// monthly income is 0.
func (Engine) ComputeSummary(txs []domain.Transaction, profile domain.UserProfile) FinancialSummary {
	income, expenses := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		amt := decimal.NewFromFloat(tx.Amount)
		switch tx.Type {
		case domain.TypeIncome:
			income = income.Add(amt)
		case domain.TypeExpense:
			expenses = expenses.Add(amt)
		}
	}

	monthlyIncome := decimal.NewFromFloat(profile.BaseSalary).Add(decimal.NewFromFloat(profile.OtherIncome))
	balance := income.Sub(expenses)

	savingsRate := decimal.Zero
	if !monthlyIncome.IsZero() {
		savingsRate = monthlyIncome.Sub(expenses).Div(monthlyIncome)
	}

	equity := decimal.NewFromFloat(profile.InitialAssets).Sub(decimal.NewFromFloat(profile.InitialLiabilities))

	return FinancialSummary{
		TotalBalance:          balance.InexactFloat64(),
		MonthlyIncome:         monthlyIncome.InexactFloat64(),
		MonthlyExpenses:       expenses.InexactFloat64(),
		SavingsRate:           savingsRate.InexactFloat64(),
		NetWorth:              equity.Add(balance).InexactFloat64(),
		ProjectedAnnualIncome: monthlyIncome.Mul(decimal.NewFromInt(12)).InexactFloat64(),
	}
}

// CategoryBreakdown sums expenses per category, largest first.
// Ties keep the category set's display order.
func CategoryBreakdown(txs []domain.Transaction) []CategoryTotal {
	totals := make(map[domain.Category]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != domain.TypeExpense {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(decimal.NewFromFloat(tx.Amount))
	}

	out := make([]CategoryTotal, 0, len(totals))
	for _, c := range domain.Categories {
		if v, ok := totals[c]; ok {
			out = append(out, CategoryTotal{Category: c, Total: v.InexactFloat64()})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// SummaryRows flattens a summary into metric/value pairs for tabular export.
func SummaryRows(s FinancialSummary) [][2]string {
	return [][2]string{
		{"Estimated Net Worth", formatFloat(s.NetWorth)},
		{"Monthly Income", formatFloat(s.MonthlyIncome)},
		{"Monthly Expenses", formatFloat(s.MonthlyExpenses)},
		{"Savings Rate", fmt.Sprintf("%s%%", decimal.NewFromFloat(s.SavingsRate*100).StringFixed(2))},
		{"Projected Annual Income", formatFloat(s.ProjectedAnnualIncome)},
		{"Total Balance", formatFloat(s.TotalBalance)},
	}
}

func formatFloat(f float64) string {
	return decimal.NewFromFloat(f).String()
}
