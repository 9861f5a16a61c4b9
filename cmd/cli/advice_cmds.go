package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/advisor"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/notionsync"
)

func (c *cli) adviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advise <question>",
		Short: "Ask the financial advisor a question about your ledger",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adv, err := c.adviser()
			if err != nil {
				return err
			}
			snap := c.app.Store.Snapshot()
			answer, err := adv.Ask(c.ctx, advisor.Request{
				Transactions: snap.Transactions,
				Summary:      c.app.Engine.ComputeSummary(snap.Transactions, snap.Profile),
				Profile:      snap.Profile,
				Question:     strings.Join(args, " "),
			})
			if err != nil {
				c.log.Error().Err(err).Msg("Advisor request failed")
				answer = advisor.Answer{Text: advisor.FallbackAnswer}
			}
			return c.render(cmd.OutOrStdout(), answerMarkdown(answer))
		},
	}
}

func (c *cli) simulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <scenario>",
		Short: "Run a 10-year wealth simulation for a scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adv, err := c.adviser()
			if err != nil {
				return err
			}
			snap := c.app.Store.Snapshot()
			summary := c.app.Engine.ComputeSummary(snap.Transactions, snap.Profile)
			text, err := adv.Simulate(c.ctx, strings.Join(args, " "), snap.Profile, summary)
			if err != nil {
				c.log.Error().Err(err).Msg("Simulation failed")
				text = advisor.FallbackAnswer
			}
			return c.render(cmd.OutOrStdout(), text)
		},
	}
}

func (c *cli) notionSyncCmd() *cobra.Command {
	var opts notionsync.Options
	cmd := &cobra.Command{
		Use:   "notion-sync",
		Short: "Mirror the ledger into the configured Notion database",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, databaseID, err := c.notionClient()
			if err != nil {
				return err
			}
			res, err := notionsync.Mirror(c.ctx, c.app.Store.Transactions(), client, databaseID, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created=%d skipped=%d archived=%d failed=%d\n", res.Created, res.Skipped, res.Archived, res.Failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Log the changes without writing to Notion")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Archive pages whose transaction is no longer in the ledger")
	return cmd
}
