package main

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/export"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/infra/gcs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
)

func (c *cli) addCmd() *cobra.Command {
	var (
		amount      float64
		description string
		category    string
		txType      string
		date        string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a manual transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := domain.TransactionDraft{
				Amount:      amount,
				Description: description,
				Category:    category,
				Type:        txType,
			}
			if date != "" {
				d, err := civil.ParseDate(date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
				draft.Date = &d
			}

			tx, err := c.app.Store.AddManual(c.ctx, draft)
			if err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), transactionsMarkdown([]domain.Transaction{tx}, c.app.Store.Profile().Currency))
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount (sign is ignored)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&category, "category", "", "Category (default Other)")
	cmd.Flags().StringVar(&txType, "type", "", "income or expense (default expense)")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger transactions, newest last",
		RunE: func(cmd *cobra.Command, args []string) error {
			txs := c.app.Store.Transactions()
			if limit > 0 && len(txs) > limit {
				txs = txs[len(txs)-limit:]
			}
			return c.render(cmd.OutOrStdout(), transactionsMarkdown(txs, c.app.Store.Profile().Currency))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the last N transactions")
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the derived financial summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := c.app.Store.Snapshot()
			s := c.app.Engine.ComputeSummary(snap.Transactions, snap.Profile)
			return c.render(cmd.OutOrStdout(), summaryMarkdown(s, metrics.CategoryBreakdown(snap.Transactions), snap.Profile.Currency))
		},
	}
}

func (c *cli) budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Show budget progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := c.app.Engine.ComputeBudgetProgress(c.app.Store.Budgets())
			return c.render(cmd.OutOrStdout(), budgetsMarkdown(progress, c.app.Store.Profile().Currency))
		},
	}

	var spent float64
	set := &cobra.Command{
		Use:   "set <category> <limit>",
		Short: "Create or replace the budget of a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid limit %q", args[1])
			}
			category := domain.ParseCategory(args[0])

			budgets := c.app.Store.Budgets()
			id := uuid.NewString()
			idx := -1
			for i, b := range budgets {
				if b.Category == category {
					idx, id = i, b.ID
					if !cmd.Flags().Changed("spent") {
						spent = b.Spent
					}
					break
				}
			}

			goal, err := domain.NewBudgetGoal(id, args[0], limit, spent)
			if err != nil {
				return err
			}
			if idx >= 0 {
				budgets[idx] = goal
			} else {
				budgets = append(budgets, goal)
			}
			if err := c.app.Store.ReplaceBudgets(c.ctx, budgets); err != nil {
				return err
			}
			progress := c.app.Engine.ComputeBudgetProgress(c.app.Store.Budgets())
			return c.render(cmd.OutOrStdout(), budgetsMarkdown(progress, c.app.Store.Profile().Currency))
		},
	}
	set.Flags().Float64Var(&spent, "spent", 0, "Amount already spent (default keeps the current value)")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			budgets := c.app.Store.Budgets()
			kept := budgets[:0]
			for _, b := range budgets {
				if b.ID != args[0] {
					kept = append(kept, b)
				}
			}
			if len(kept) == len(budgets) {
				return fmt.Errorf("budget %q not found", args[0])
			}
			return c.app.Store.ReplaceBudgets(c.ctx, kept)
		},
	}

	cmd.AddCommand(set, remove)
	return cmd
}

func (c *cli) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the financial profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.render(cmd.OutOrStdout(), profileMarkdown(c.app.Store.Profile()))
		},
	}

	var p domain.UserProfile
	set := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			current := c.app.Store.Profile()
			flags := cmd.Flags()
			if flags.Changed("salary") {
				current.BaseSalary = p.BaseSalary
			}
			if flags.Changed("other-income") {
				current.OtherIncome = p.OtherIncome
			}
			if flags.Changed("assets") {
				current.InitialAssets = p.InitialAssets
			}
			if flags.Changed("liabilities") {
				current.InitialLiabilities = p.InitialLiabilities
			}
			if flags.Changed("currency") {
				current.Currency = p.Currency
			}
			if err := c.app.Store.UpdateProfile(c.ctx, current); err != nil {
				return err
			}
			return c.render(cmd.OutOrStdout(), profileMarkdown(c.app.Store.Profile()))
		},
	}
	set.Flags().Float64Var(&p.BaseSalary, "salary", 0, "Monthly base salary")
	set.Flags().Float64Var(&p.OtherIncome, "other-income", 0, "Other monthly income")
	set.Flags().Float64Var(&p.InitialAssets, "assets", 0, "Initial assets")
	set.Flags().Float64Var(&p.InitialLiabilities, "liabilities", 0, "Initial liabilities")
	set.Flags().StringVar(&p.Currency, "currency", "", "Display currency code")

	cmd.AddCommand(set)
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:       "export transactions|summary",
		Short:     "Export the ledger or the summary as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"transactions", "summary"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var table export.Table
			switch args[0] {
			case "transactions":
				table = export.Transactions(c.app.Store.Transactions())
			case "summary":
				snap := c.app.Store.Snapshot()
				table = export.Summary(c.app.Engine.ComputeSummary(snap.Transactions, snap.Profile))
			default:
				return fmt.Errorf("unknown export %q: want transactions or summary", args[0])
			}

			today := civil.DateOf(time.Now())
			if gcs.IsURI(dir) {
				var buf bytes.Buffer
				err := export.WriteCSV(&buf, table)
				if errors.Is(err, export.ErrEmpty) {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to export.")
					return nil
				}
				if err != nil {
					return err
				}
				uri := gcs.Join(dir, export.Filename(args[0], today))
				if err := gcs.Upload(c.ctx, uri, "text/csv", buf.Bytes()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), uri)
				return nil
			}

			path, err := export.WriteFile(dir, args[0], today, table)
			if errors.Is(err, export.ErrEmpty) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to export.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Output directory or gs://bucket/prefix")
	return cmd
}

func (c *cli) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every transaction (budgets and profile are kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all transactions; pass --yes to confirm")
			}
			c.app.Store.Reset(c.ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Ledger reset.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
