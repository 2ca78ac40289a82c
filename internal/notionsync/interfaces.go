package notionsync

import (
	"context"

	"github.com/jomei/notionapi"
)

// NotionService is the part of the Notion API the exporter uses.
type NotionService interface {
	GetDatabase(ctx context.Context, databaseID string) (*notionapi.Database, error)
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
}
