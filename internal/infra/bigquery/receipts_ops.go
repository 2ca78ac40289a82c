package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	receiptsTable        = "receipts"
	receiptLineItemTable = "receipt_line_items"
	modelOutputsTable    = "model_outputs"
)

// Dataset locates the archive tables.
type Dataset struct {
	ProjectID string
	DatasetID string
}

func (d Dataset) table(client *bigquery.Client, name string) *bigquery.Table {
	return client.DatasetInProject(d.ProjectID, d.DatasetID).Table(name)
}

func (d Dataset) qualified(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", d.ProjectID, d.DatasetID, name)
}

// InsertReceiptWithClient inserts a receipt and its line items using the provided client.
func InsertReceiptWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, row *ReceiptRow, items []*ReceiptLineItemRow) error {
	if err := ds.table(client, receiptsTable).Inserter().Put(ctx, row); err != nil {
		return fmt.Errorf("InsertReceipt: inserting receipt: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	if err := ds.table(client, receiptLineItemTable).Inserter().Put(ctx, items); err != nil {
		return fmt.Errorf("InsertReceipt: inserting line items: %w", err)
	}
	return nil
}

// InsertModelOutputWithClient inserts a single ModelOutputRow using the provided client.
// Uses DML INSERT to avoid streaming buffer issues.
func InsertModelOutputWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, row *ModelOutputRow) error {
	q := client.Query(`
		INSERT INTO ` + ds.qualified(modelOutputsTable) + ` (
			output_id, run_id, source, event_name,
			model_name, raw_text, created_ts
		)
		VALUES (
			@output_id, @run_id, @source, @event_name,
			@model_name, @raw_text, @created_ts
		)
	`)

	q.Parameters = []bigquery.QueryParameter{
		{Name: "output_id", Value: row.OutputID},
		{Name: "run_id", Value: row.RunID},
		{Name: "source", Value: row.Source},
		{Name: "event_name", Value: row.EventName},
		{Name: "model_name", Value: row.ModelName},
		{Name: "raw_text", Value: row.RawText},
		{Name: "created_ts", Value: row.CreatedTS},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("InsertModelOutput: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("InsertModelOutput: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("InsertModelOutput: job error: %w", err)
	}

	return nil
}

// ListReceiptsByEventWithClient returns the receipts archived for an event,
// oldest first.
func ListReceiptsByEventWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, eventName string) ([]*ReceiptRow, error) {
	q := client.Query(`
		SELECT
			receipt_id,
			run_id,
			event_name,
			file_name,
			merchant_name,
			location,
			purchase_date_text,
			purchase_date,
			subtotal_text,
			tax_text,
			total_text,
			subtotal_amount,
			tax_amount,
			total_amount,
			completeness_score,
			flags,
			processed_ts,
			created_ts
		FROM ` + ds.qualified(receiptsTable) + `
		WHERE event_name = @event_name
		ORDER BY processed_ts, receipt_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "event_name", Value: eventName},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListReceiptsByEventWithClient: reading query: %w", err)
	}

	var receipts []*ReceiptRow
	for {
		var row ReceiptRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListReceiptsByEventWithClient: iterating: %w", err)
		}
		receipts = append(receipts, &row)
	}

	return receipts, nil
}

// ListLineItemsWithClient returns the line items of the given receipts,
// grouped by receipt ID.
func ListLineItemsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, receiptIDs []string) (map[string][]*ReceiptLineItemRow, error) {
	out := make(map[string][]*ReceiptLineItemRow, len(receiptIDs))
	if len(receiptIDs) == 0 {
		return out, nil
	}

	q := client.Query(`
		SELECT
			line_item_id,
			receipt_id,
			line_index,
			description,
			amount_text,
			amount,
			category_name,
			justification,
			needs_approval,
			approval_reason
		FROM ` + ds.qualified(receiptLineItemTable) + `
		WHERE receipt_id IN UNNEST(@receipt_ids)
		ORDER BY receipt_id, line_index
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "receipt_ids", Value: receiptIDs},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListLineItemsWithClient: reading query: %w", err)
	}

	for {
		var row ReceiptLineItemRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListLineItemsWithClient: iterating: %w", err)
		}
		out[row.ReceiptID] = append(out[row.ReceiptID], &row)
	}

	return out, nil
}
