package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/advisor"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/app"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/config"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/notionsync"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/pipeline"
)

func main() {
	if err := newRootCmd(deps{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Extractor covers both ingestion capabilities.
type Extractor interface {
	pipeline.ReceiptExtractor
	pipeline.StatementExtractor
}

// Advisor is the advisory capability used by advise and simulate.
type Advisor interface {
	Ask(ctx context.Context, req advisor.Request) (advisor.Answer, error)
	Simulate(ctx context.Context, scenario string, profile domain.UserProfile, summary metrics.FinancialSummary) (string, error)
}

// deps overrides the external services; nil fields are built from config.
type deps struct {
	extractor Extractor
	advisor   Advisor
	notion    notionsync.NotionService
}

// cli holds the state shared by every command of one invocation.
type cli struct {
	deps

	configPath string
	plain      bool

	ctx context.Context
	log zerolog.Logger
	cfg *config.Config
	app *app.App
}

func newRootCmd(d deps) *cobra.Command {
	c := &cli{deps: d}

	root := &cobra.Command{
		Use:   "vaulty",
		Short: "Personal finance ledger with receipt and statement ingestion",
		Long: `Vaulty keeps a personal ledger of transactions, budgets and a financial profile.
Transactions are entered by hand, scanned from receipt photos or imported from bank
statements, and the derived summary can be exported or discussed with an advisor.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to TOML config file (default: vaulty.toml if present)")
	root.PersistentFlags().BoolVar(&c.plain, "plain", false, "Print raw markdown instead of rendering it")

	root.AddCommand(
		c.addCmd(),
		c.listCmd(),
		c.summaryCmd(),
		c.budgetsCmd(),
		c.profileCmd(),
		c.scanReceiptCmd(),
		c.importStatementCmd(),
		c.exportCmd(),
		c.adviseCmd(),
		c.simulateCmd(),
		c.notionSyncCmd(),
		c.resetCmd(),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.NewWithLevel(cfg.Log.Level)
	c.ctx = logger.WithContext(ctx, c.log)

	a, err := app.Open(c.ctx, cfg)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// gemini returns the configured extractor, creating the Gemini client on first use.
func (c *cli) gemini() (Extractor, error) {
	if c.extractor != nil {
		return c.extractor, nil
	}
	if c.cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("no Gemini API key configured (set VAULTY_GEMINI_API_KEY or GEMINI_API_KEY)")
	}
	g, err := pipeline.NewGeminiExtractor(c.ctx, c.cfg.Gemini.APIKey, c.cfg.Gemini.ExtractionModel, c.cfg.Gemini.ReceiptModel)
	if err != nil {
		return nil, err
	}
	c.extractor = g
	return g, nil
}

func (c *cli) adviser() (Advisor, error) {
	if c.advisor != nil {
		return c.advisor, nil
	}
	if c.cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("no Gemini API key configured (set VAULTY_GEMINI_API_KEY or GEMINI_API_KEY)")
	}
	g, err := advisor.NewGemini(c.ctx, c.cfg.Gemini.APIKey, c.cfg.Gemini.AdvisorModel)
	if err != nil {
		return nil, err
	}
	c.advisor = g
	return g, nil
}

func (c *cli) notionClient() (notionsync.NotionService, string, error) {
	if c.cfg.Notion.DatabaseID == "" {
		return nil, "", fmt.Errorf("notion.database_id is not configured")
	}
	if c.notion != nil {
		return c.notion, c.cfg.Notion.DatabaseID, nil
	}
	if c.cfg.Notion.Token == "" {
		return nil, "", fmt.Errorf("notion.token is not configured")
	}
	return notionsync.NewClient(c.cfg.Notion.Token), c.cfg.Notion.DatabaseID, nil
}
