package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/receipt-processor/internal/logger"
	"github.com/dvloznov/receipt-processor/internal/report"
)

// Exporter writes expense rows into a Notion database, one page per row.
type Exporter struct {
	service    NotionService
	databaseID string
	dryRun     bool
}

// NewExporter creates an Exporter. In dry-run mode no pages are created and
// every row is only logged.
func NewExporter(service NotionService, databaseID string, dryRun bool) *Exporter {
	return &Exporter{
		service:    service,
		databaseID: databaseID,
		dryRun:     dryRun,
	}
}

// ExportRows checks the database schema, then creates one page per row in
// order. It stops at the first API error and returns how many pages were
// written before it.
func (e *Exporter) ExportRows(ctx context.Context, rows []report.ExportRow) (int, error) {
	log := logger.FromContext(ctx)

	log.Info().
		Str("database_id", e.databaseID).
		Int("row_count", len(rows)).
		Bool("dry_run", e.dryRun).
		Msg("Starting Notion export")

	if !e.dryRun {
		db, err := e.service.GetDatabase(ctx, e.databaseID)
		if err != nil {
			return 0, fmt.Errorf("ExportRows: %w", err)
		}
		if missing := MissingProperties(db); len(missing) > 0 {
			// Notion rejects pages that set unknown properties.
			return 0, fmt.Errorf("ExportRows: database %s is missing properties %v", e.databaseID, missing)
		}
	}

	var created int
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return created, fmt.Errorf("ExportRows: %w", err)
		}

		if e.dryRun {
			log.Info().
				Str("row", rowKey(row)).
				Msg("[DRY RUN] Would create new Notion page")
			created++
			continue
		}

		page, err := e.service.CreatePage(ctx, e.databaseID, ExportRowToNotionProperties(row))
		if err != nil {
			return created, fmt.Errorf("ExportRows: row %d (%s): %w", i, rowKey(row), err)
		}
		log.Debug().
			Str("row", rowKey(row)).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("created", created).
		Int("total", len(rows)).
		Msg("Notion export completed")

	return created, nil
}
