package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/advisor"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/pipeline"
)

const wordWrap = 100

// render writes md to w, through glamour unless plain output was requested.
func (c *cli) render(w io.Writer, md string) error {
	if c.plain {
		_, err := fmt.Fprintln(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func transactionsMarkdown(txs []domain.Transaction, currency string) string {
	if len(txs) == 0 {
		return "_No transactions._"
	}
	var b strings.Builder
	b.WriteString("| Date | Description | Category | Amount | Source | ID |\n")
	b.WriteString("|---|---|---|---:|---|---|\n")
	for _, tx := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			tx.Date, cell(tx.Description), tx.Category,
			domain.FormatAmount(tx.Signed(), currency), tx.Source, tx.ID)
	}
	return b.String()
}

func summaryMarkdown(s metrics.FinancialSummary, breakdown []metrics.CategoryTotal, currency string) string {
	var b strings.Builder
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total Balance | %s |\n", domain.FormatAmount(s.TotalBalance, currency))
	fmt.Fprintf(&b, "| Monthly Income | %s |\n", domain.FormatAmount(s.MonthlyIncome, currency))
	fmt.Fprintf(&b, "| Monthly Expenses | %s |\n", domain.FormatAmount(s.MonthlyExpenses, currency))
	fmt.Fprintf(&b, "| Savings Rate | %.2f%% |\n", s.SavingsRate*100)
	fmt.Fprintf(&b, "| Net Worth | %s |\n", domain.FormatAmount(s.NetWorth, currency))
	fmt.Fprintf(&b, "| Projected Annual Income | %s |\n", domain.FormatAmount(s.ProjectedAnnualIncome, currency))

	if len(breakdown) > 0 {
		b.WriteString("\n## Spending by category\n\n| Category | Total |\n|---|---:|\n")
		for _, ct := range breakdown {
			fmt.Fprintf(&b, "| %s | %s |\n", ct.Category, domain.FormatAmount(ct.Total, currency))
		}
	}
	return b.String()
}

func budgetsMarkdown(progress []metrics.BudgetProgress, currency string) string {
	if len(progress) == 0 {
		return "_No budgets._"
	}
	var b strings.Builder
	b.WriteString("| ID | Category | Spent | Limit | Used | |\n|---|---|---:|---:|---:|---|\n")
	for _, p := range progress {
		flag := ""
		if p.OverLimit {
			flag = "**over**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %.0f%% | %s |\n",
			p.BudgetID, p.Category,
			domain.FormatAmount(p.Spent, currency), domain.FormatAmount(p.Limit, currency),
			p.PercentUsed, flag)
	}
	return b.String()
}

func profileMarkdown(p domain.UserProfile) string {
	var b strings.Builder
	b.WriteString("| Field | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Base Salary | %s |\n", domain.FormatAmount(p.BaseSalary, p.Currency))
	fmt.Fprintf(&b, "| Other Income | %s |\n", domain.FormatAmount(p.OtherIncome, p.Currency))
	fmt.Fprintf(&b, "| Initial Assets | %s |\n", domain.FormatAmount(p.InitialAssets, p.Currency))
	fmt.Fprintf(&b, "| Initial Liabilities | %s |\n", domain.FormatAmount(p.InitialLiabilities, p.Currency))
	fmt.Fprintf(&b, "| Currency | %s |\n", p.Currency)
	fmt.Fprintf(&b, "| Institution Linked | %t |\n", p.InstitutionLinked)
	return b.String()
}

func outcomeMarkdown(out pipeline.Outcome, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** attempt `%s` ended **%s**.\n\n", out.Channel, out.AttemptID, out.State)
	if out.Message != "" {
		b.WriteString(out.Message + "\n\n")
	}
	if out.Dropped > 0 {
		fmt.Fprintf(&b, "%d records were dropped.\n\n", out.Dropped)
	}
	if len(out.Transactions) > 0 {
		b.WriteString(transactionsMarkdown(out.Transactions, currency))
	}
	return b.String()
}

func jobsMarkdown(list []*jobs.StatementImportJob) string {
	if len(list) == 0 {
		return "_No statements imported._"
	}
	var b strings.Builder
	b.WriteString("| File | Status | Imported | Dropped | Error |\n|---|---|---:|---:|---|\n")
	for _, j := range list {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n", cell(j.Filename), j.Status, j.Imported, j.Dropped, cell(j.Error))
	}
	return b.String()
}

func answerMarkdown(a advisor.Answer) string {
	if len(a.Sources) == 0 {
		return a.Text
	}
	var b strings.Builder
	b.WriteString(a.Text)
	b.WriteString("\n\n**Sources**\n\n")
	for _, s := range a.Sources {
		title := s.Title
		if title == "" {
			title = s.URI
		}
		fmt.Fprintf(&b, "- [%s](%s)\n", title, s.URI)
	}
	return b.String()
}
