package domain

import "cloud.google.com/go/civil"

// SeedTransactions is the demo ledger a first session starts with.
func SeedTransactions() []Transaction {
	d := func(day int) civil.Date { return civil.Date{Year: 2024, Month: 5, Day: day} }
	return []Transaction{
		{ID: "1", Date: d(1), Amount: 5000, Category: CategoryIncome, Description: "Salary", Type: TypeIncome, Source: SourceManual},
		{ID: "2", Date: d(2), Amount: 1200, Category: CategoryHousing, Description: "Monthly Rent", Type: TypeExpense, Source: SourceManual},
		{ID: "3", Date: d(5), Amount: 150, Category: CategoryFood, Description: "Grocery Store", Type: TypeExpense, Source: SourceManual},
		{ID: "4", Date: d(7), Amount: 80, Category: CategoryTransportation, Description: "Gas Station", Type: TypeExpense, Source: SourceManual},
		{ID: "5", Date: d(10), Amount: 200, Category: CategoryEntertainment, Description: "Concert Tickets", Type: TypeExpense, Source: SourceManual},
	}
}

// SeedBudgets is the demo budget list a first session starts with.
func SeedBudgets() []BudgetGoal {
	return []BudgetGoal{
		{ID: "b1", Category: CategoryFood, Limit: 600, Spent: 150},
		{ID: "b2", Category: CategoryHousing, Limit: 1200, Spent: 1200},
		{ID: "b3", Category: CategoryTransportation, Limit: 300, Spent: 80},
	}
}
