package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// DefaultRetries is how often a rate-limited (429) call is retried.
const DefaultRetries = 3

// Client talks to the Notion database that mirrors the ledger. Pages are never
// deleted outright: a transaction that left the ledger is archived.
type Client struct {
	api *notionapi.Client
}

// NewClient creates a Client for an integration token. Extra options are
// passed to notionapi after the retry default.
func NewClient(token string, opts ...notionapi.ClientOption) *Client {
	opts = append([]notionapi.ClientOption{notionapi.WithRetry(DefaultRetries)}, opts...)
	return &Client{api: notionapi.NewClient(notionapi.Token(token), opts...)}
}

// CreatePage adds one ledger row to the database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePage: database %s: %w", databaseID, err)
	}
	return page, nil
}

// QueryDatabase fetches one page of database rows.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
	if err != nil {
		return nil, fmt.Errorf("QueryDatabase: database %s: %w", databaseID, err)
	}
	return resp, nil
}

// ArchivePage moves a mirrored row to the Notion trash.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	if _, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Archived: true}); err != nil {
		return fmt.Errorf("ArchivePage: page %s: %w", pageID, err)
	}
	return nil
}

var _ NotionService = (*Client)(nil)
