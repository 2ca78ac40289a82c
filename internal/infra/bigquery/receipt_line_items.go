package bigquery

import "math/big"

type ReceiptLineItemRow struct {
	LineItemID string `bigquery:"line_item_id"` // REQUIRED
	ReceiptID  string `bigquery:"receipt_id"`   // REQUIRED

	LineIndex int64 `bigquery:"line_index"` // REQUIRED, extraction order

	Description string `bigquery:"description"` // REQUIRED

	AmountText string   `bigquery:"amount_text"` // as extracted
	Amount     *big.Rat `bigquery:"amount"`      // NUMERIC, NULLABLE when not numeric

	CategoryName   string `bigquery:"category_name"`
	Justification  string `bigquery:"justification"`
	NeedsApproval  bool   `bigquery:"needs_approval"`
	ApprovalReason string `bigquery:"approval_reason"`
}
