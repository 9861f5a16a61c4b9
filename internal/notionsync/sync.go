package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
)

// PageSize is the number of pages requested per database query.
const PageSize = 100

// Options controls a mirror run.
type Options struct {
	// DryRun logs the pages that would be written without calling Notion.
	DryRun bool
	// Prune archives pages whose Transaction ID is no longer in the ledger.
	Prune bool
}

// Result counts what a mirror run did.
type Result struct {
	Created  int `json:"created"`
	Skipped  int `json:"skipped"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

// SyncLedger mirrors the ledger into a Notion database without pruning.
func SyncLedger(ctx context.Context, txs []domain.Transaction, notionClient NotionService, databaseID string, dryRun bool) (created, skipped int, err error) {
	res, err := Mirror(ctx, txs, notionClient, databaseID, Options{DryRun: dryRun})
	return res.Created, res.Skipped, err
}

// Mirror creates a page for every ledger entry whose id is not yet present in
// the database. Entries already mirrored are skipped. Per-page failures are
// logged and counted; only a failed database query aborts the run.
func Mirror(ctx context.Context, txs []domain.Transaction, notionClient NotionService, databaseID string, opts Options) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	log.Info().
		Int("transaction_count", len(txs)).
		Bool("dry_run", opts.DryRun).
		Bool("prune", opts.Prune).
		Msg("Starting ledger mirror to Notion")

	pages, err := queryAllNotionPages(ctx, notionClient, databaseID)
	if err != nil {
		return res, fmt.Errorf("Mirror: failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]bool, len(pages))
	for _, page := range pages {
		if id := extractTransactionID(page); id != "" {
			existing[id] = true
		}
	}

	inLedger := make(map[string]bool, len(txs))
	for _, tx := range txs {
		inLedger[tx.ID] = true

		if existing[tx.ID] {
			res.Skipped++
			continue
		}

		if opts.DryRun {
			log.Info().
				Str("transaction_id", tx.ID).
				Str("description", tx.Description).
				Float64("amount", tx.Signed()).
				Msg("[DRY RUN] Would create Notion page")
			res.Created++
			continue
		}

		if _, err := notionClient.CreatePage(ctx, databaseID, TransactionToNotionProperties(tx)); err != nil {
			log.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to create Notion page")
			res.Failed++
			continue
		}
		existing[tx.ID] = true
		res.Created++
	}

	if opts.Prune {
		for _, page := range pages {
			id := extractTransactionID(page)
			if id == "" || inLedger[id] {
				continue
			}
			if opts.DryRun {
				log.Info().Str("transaction_id", id).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive Notion page")
				res.Archived++
				continue
			}
			if err := notionClient.ArchivePage(ctx, string(page.ID)); err != nil {
				log.Error().Err(err).Str("page_id", string(page.ID)).Msg("Failed to archive Notion page")
				res.Failed++
				continue
			}
			res.Archived++
		}
	}

	log.Info().
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Int("archived", res.Archived).
		Int("failed", res.Failed).
		Msg("Ledger mirror completed")

	return res, nil
}

// queryAllNotionPages retrieves all pages from a Notion database, handling pagination.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: PageSize,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
