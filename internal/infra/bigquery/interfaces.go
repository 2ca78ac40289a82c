package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

// ReceiptRepository archives processed receipts and reads them back per event.
type ReceiptRepository interface {
	SaveModelOutput(ctx context.Context, out domain.ModelOutput) error
	SaveRecord(ctx context.Context, runID string, rec domain.Record) error
	ListRecordsByEvent(ctx context.Context, eventName string) ([]domain.Record, error)
	EnsureTables(ctx context.Context) error
	Close() error
}

// BigQueryReceiptRepository is the concrete implementation of ReceiptRepository
// that interacts with BigQuery. It holds a shared BigQuery client to avoid
// creating a new connection for each operation.
type BigQueryReceiptRepository struct {
	client *bigquery.Client
	ds     Dataset
	now    func() time.Time
}

// NewBigQueryReceiptRepository creates a new instance of BigQueryReceiptRepository
// with a shared BigQuery client.
func NewBigQueryReceiptRepository(ctx context.Context, projectID, datasetID string, opts ...option.ClientOption) (*BigQueryReceiptRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryReceiptRepository: creating client: %w", err)
	}
	return &BigQueryReceiptRepository{
		client: client,
		ds:     Dataset{ProjectID: projectID, DatasetID: datasetID},
		now:    time.Now,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryReceiptRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// EnsureTables creates the archive dataset and tables if needed.
func (r *BigQueryReceiptRepository) EnsureTables(ctx context.Context) error {
	return EnsureTablesWithClient(ctx, r.client, r.ds)
}

// SaveModelOutput stores the raw model response for a receipt.
func (r *BigQueryReceiptRepository) SaveModelOutput(ctx context.Context, out domain.ModelOutput) error {
	return InsertModelOutputWithClient(ctx, r.client, r.ds, ModelOutputRowFrom(out))
}

// SaveRecord stores a normalized receipt with its line items.
func (r *BigQueryReceiptRepository) SaveRecord(ctx context.Context, runID string, rec domain.Record) error {
	row, items := ReceiptRowsFromRecord(runID, rec, r.now())
	return InsertReceiptWithClient(ctx, r.client, r.ds, row, items)
}

// ListRecordsByEvent rebuilds every archived record of an event.
func (r *BigQueryReceiptRepository) ListRecordsByEvent(ctx context.Context, eventName string) ([]domain.Record, error) {
	rows, err := ListReceiptsByEventWithClient(ctx, r.client, r.ds, eventName)
	if err != nil {
		return nil, fmt.Errorf("ListRecordsByEvent: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ReceiptID)
	}
	items, err := ListLineItemsWithClient(ctx, r.client, r.ds, ids)
	if err != nil {
		return nil, fmt.Errorf("ListRecordsByEvent: %w", err)
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, RecordFromRows(row, items[row.ReceiptID]))
	}
	return records, nil
}
