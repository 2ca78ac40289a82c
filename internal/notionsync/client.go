package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// DefaultRetries is how often a rate-limited Notion call is retried.
const DefaultRetries = 3

// NotionClient talks to the expense database through the Notion SDK.
type NotionClient struct {
	api *notionapi.Client
}

// NewNotionClient creates a client for an integration token. Rate-limited
// requests are retried up to retries times.
func NewNotionClient(token string, retries int) *NotionClient {
	var opts []notionapi.ClientOption
	if retries > 0 {
		opts = append(opts, notionapi.WithRetry(retries))
	}
	return &NotionClient{api: notionapi.NewClient(notionapi.Token(token), opts...)}
}

// GetDatabase fetches the database schema.
func (n *NotionClient) GetDatabase(ctx context.Context, databaseID string) (*notionapi.Database, error) {
	db, err := n.api.Database.Get(ctx, notionapi.DatabaseID(databaseID))
	if err != nil {
		return nil, fmt.Errorf("GetDatabase: %s: %w", databaseID, err)
	}
	return db, nil
}

// CreatePage adds one row to the database.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	page, err := n.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePage: %s: %w", databaseID, err)
	}
	return page, nil
}
