package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
)

type ReceiptRow struct {
	ReceiptID string `bigquery:"receipt_id"` // REQUIRED
	RunID     string `bigquery:"run_id"`     // REQUIRED

	EventName string `bigquery:"event_name"` // REQUIRED
	FileName  string `bigquery:"file_name"`  // REQUIRED

	MerchantName string `bigquery:"merchant_name"` // REQUIRED
	Location     string `bigquery:"location"`      // REQUIRED

	PurchaseDateText string            `bigquery:"purchase_date_text"` // as extracted
	PurchaseDate     bigquery.NullDate `bigquery:"purchase_date"`      // DATE, NULLABLE when not YYYY-MM-DD

	SubtotalText string `bigquery:"subtotal_text"`
	TaxText      string `bigquery:"tax_text"`
	TotalText    string `bigquery:"total_text"`

	SubtotalAmount *big.Rat `bigquery:"subtotal_amount"` // NUMERIC, NULLABLE
	TaxAmount      *big.Rat `bigquery:"tax_amount"`      // NUMERIC, NULLABLE
	TotalAmount    *big.Rat `bigquery:"total_amount"`    // NUMERIC, NULLABLE

	CompletenessScore string   `bigquery:"completeness_score"`
	Flags             []string `bigquery:"flags"` // REPEATED STRING

	ProcessedTS time.Time `bigquery:"processed_ts"` // REQUIRED
	CreatedTS   time.Time `bigquery:"created_ts"`   // REQUIRED
}
