package metrics

import (
	"testing"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
)

func tx(typ domain.TransactionType, amount float64, cat domain.Category) domain.Transaction {
	return domain.Transaction{Type: typ, Amount: amount, Category: cat}
}

func TestComputeSummary_Example(t *testing.T) {
	txs := []domain.Transaction{
		tx(domain.TypeIncome, 5000, domain.CategoryIncome),
		tx(domain.TypeExpense, 1200, domain.CategoryHousing),
		tx(domain.TypeExpense, 150, domain.CategoryFood),
	}
	profile := domain.UserProfile{BaseSalary: 4500, OtherIncome: 500, InitialAssets: 15000, InitialLiabilities: 3630}

	s := ComputeSummary(txs, profile)

	if s.MonthlyExpenses != 1350 {
		t.Errorf("MonthlyExpenses = %v, want 1350", s.MonthlyExpenses)
	}
	if s.TotalBalance != 3650 {
		t.Errorf("TotalBalance = %v, want 3650", s.TotalBalance)
	}
	if s.SavingsRate != 0.73 {
		t.Errorf("SavingsRate = %v, want 0.73", s.SavingsRate)
	}
	if s.NetWorth != 15020 {
		t.Errorf("NetWorth = %v, want 15020", s.NetWorth)
	}
	if s.ProjectedAnnualIncome != 60000 {
		t.Errorf("ProjectedAnnualIncome = %v, want 60000", s.ProjectedAnnualIncome)
	}
}

func TestComputeSummary_EmptyLedger(t *testing.T) {
	profile := domain.DefaultProfile()
	s := ComputeSummary(nil, profile)

	if s.TotalBalance != 0 || s.MonthlyExpenses != 0 {
		t.Errorf("expected zero balance and expenses, got %+v", s)
	}
	if want := profile.InitialAssets - profile.InitialLiabilities; s.NetWorth != want {
		t.Errorf("NetWorth = %v, want %v", s.NetWorth, want)
	}
	if s.MonthlyIncome != 5000 {
		t.Errorf("MonthlyIncome = %v, want 5000", s.MonthlyIncome)
	}
}

func TestComputeSummary_ZeroIncome(t *testing.T) {
	txs := []domain.Transaction{tx(domain.TypeExpense, 80, domain.CategoryFood)}
	s := ComputeSummary(txs, domain.UserProfile{})

	if s.SavingsRate != 0 {
		t.Errorf("SavingsRate = %v, want 0", s.SavingsRate)
	}
}

func TestComputeBudgetProgress(t *testing.T) {
	tests := []struct {
		name        string
		budget      domain.BudgetGoal
		wantPercent float64
		wantOver    bool
	}{
		{"quarter used", domain.BudgetGoal{Limit: 600, Spent: 150}, 25, false},
		{"fully used", domain.BudgetGoal{Limit: 1200, Spent: 1200}, 100, true},
		{"overspent is capped", domain.BudgetGoal{Limit: 100, Spent: 250}, 100, true},
		{"at threshold", domain.BudgetGoal{Limit: 100, Spent: 85}, 85, false},
		{"above threshold", domain.BudgetGoal{Limit: 100, Spent: 86}, 86, true},
		{"zero limit", domain.BudgetGoal{Limit: 0, Spent: 0}, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBudgetProgress([]domain.BudgetGoal{tt.budget})
			if len(got) != 1 {
				t.Fatalf("got %d results, want 1", len(got))
			}
			if got[0].PercentUsed != tt.wantPercent {
				t.Errorf("PercentUsed = %v, want %v", got[0].PercentUsed, tt.wantPercent)
			}
			if got[0].OverLimit != tt.wantOver {
				t.Errorf("OverLimit = %v, want %v", got[0].OverLimit, tt.wantOver)
			}
		})
	}
}

func TestEngine_CustomThreshold(t *testing.T) {
	e := Engine{WarnThreshold: 0.5}
	got := e.ComputeBudgetProgress([]domain.BudgetGoal{{Limit: 600, Spent: 310}})
	if !got[0].OverLimit {
		t.Error("expected budget above 0.5 threshold to be flagged")
	}
}

func TestCategoryBreakdown(t *testing.T) {
	got := CategoryBreakdown(domain.SeedTransactions())
	want := []CategoryTotal{
		{domain.CategoryHousing, 1200},
		{domain.CategoryEntertainment, 200},
		{domain.CategoryFood, 150},
		{domain.CategoryTransportation, 80},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSummaryRows(t *testing.T) {
	rows := SummaryRows(FinancialSummary{SavingsRate: 0.73, NetWorth: 15020})
	if rows[0] != [2]string{"Estimated Net Worth", "15020"} {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[3] != [2]string{"Savings Rate", "73.00%"} {
		t.Errorf("row 3 = %v", rows[3])
	}
}
