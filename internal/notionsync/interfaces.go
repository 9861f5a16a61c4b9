package notionsync

import (
	"context"

	"github.com/jomei/notionapi"
)

// NotionService is the slice of the Notion API the ledger mirror needs.
type NotionService interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	ArchivePage(ctx context.Context, pageID string) error
}
