package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type ModelOutputRow struct {
	OutputID string `bigquery:"output_id"` // REQUIRED
	RunID    string `bigquery:"run_id"`    // REQUIRED

	Source    string              `bigquery:"source"`     // REQUIRED, local path or gs:// URI
	EventName bigquery.NullString `bigquery:"event_name"` // NULLABLE

	ModelName string `bigquery:"model_name"` // REQUIRED
	RawText   string `bigquery:"raw_text"`   // REQUIRED

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}
