package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
)

// archiveTables pairs each archive table with the row type its schema is inferred from.
var archiveTables = []struct {
	name string
	row  interface{}
}{
	{receiptsTable, ReceiptRow{}},
	{receiptLineItemTable, ReceiptLineItemRow{}},
	{modelOutputsTable, ModelOutputRow{}},
}

// EnsureTablesWithClient creates the dataset and archive tables when they do not exist.
// Existing tables are left untouched.
func EnsureTablesWithClient(ctx context.Context, client *bigquery.Client, ds Dataset) error {
	dataset := client.DatasetInProject(ds.ProjectID, ds.DatasetID)
	if err := dataset.Create(ctx, &bigquery.DatasetMetadata{}); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("EnsureTables: create dataset %s: %w", ds.DatasetID, err)
	}

	for _, tbl := range archiveTables {
		schema, err := bigquery.InferSchema(tbl.row)
		if err != nil {
			return fmt.Errorf("EnsureTables: infer schema for %s: %w", tbl.name, err)
		}
		// NUMERIC and DATE columns hold NULL when the extracted text is not parseable.
		schema = schema.Relax()
		err = dataset.Table(tbl.name).Create(ctx, &bigquery.TableMetadata{Schema: schema})
		if err != nil && !isAlreadyExists(err) {
			return fmt.Errorf("EnsureTables: create table %s: %w", tbl.name, err)
		}
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}
