package bigquery

import (
	"math/big"
	"sort"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

// ReceiptRowsFromRecord maps a record onto a receipt row and its line item rows.
// Amount columns are NULL when the extracted text is not numeric.
func ReceiptRowsFromRecord(runID string, rec domain.Record, now time.Time) (*ReceiptRow, []*ReceiptLineItemRow) {
	receiptID := uuid.New().String()

	row := &ReceiptRow{
		ReceiptID:         receiptID,
		RunID:             runID,
		EventName:         rec.EventName,
		FileName:          rec.FileName,
		MerchantName:      rec.Merchant,
		Location:          rec.Location,
		PurchaseDateText:  rec.Date,
		PurchaseDate:      parseNullDate(rec.Date),
		SubtotalText:      rec.Subtotal,
		TaxText:           rec.Tax,
		TotalText:         rec.ReceiptTotal,
		SubtotalAmount:    amountRat(rec.Subtotal),
		TaxAmount:         amountRat(rec.Tax),
		TotalAmount:       amountRat(rec.ReceiptTotal),
		CompletenessScore: rec.CompletenessScore,
		Flags:             append([]string{}, rec.Flags...),
		ProcessedTS:       rec.ProcessedAt.UTC(),
		CreatedTS:         now.UTC(),
	}

	items := make([]*ReceiptLineItemRow, 0, len(rec.LineItems))
	for i, item := range rec.LineItems {
		items = append(items, &ReceiptLineItemRow{
			LineItemID:     uuid.New().String(),
			ReceiptID:      receiptID,
			LineIndex:      int64(i),
			Description:    item.Description,
			AmountText:     item.Amount,
			Amount:         amountRat(item.Amount),
			CategoryName:   item.Category,
			Justification:  item.Justification,
			NeedsApproval:  item.NeedsApproval,
			ApprovalReason: item.ApprovalReason,
		})
	}

	return row, items
}

// RecordFromRows rebuilds a record from archived rows. Line items are put
// back in extraction order.
func RecordFromRows(row *ReceiptRow, items []*ReceiptLineItemRow) domain.Record {
	sorted := append([]*ReceiptLineItemRow(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LineIndex < sorted[j].LineIndex
	})

	rec := domain.Record{
		Merchant:          row.MerchantName,
		Date:              row.PurchaseDateText,
		Location:          row.Location,
		Subtotal:          row.SubtotalText,
		Tax:               row.TaxText,
		ReceiptTotal:      row.TotalText,
		LineItems:         make([]domain.LineItem, 0, len(sorted)),
		Flags:             append([]string{}, row.Flags...),
		CompletenessScore: row.CompletenessScore,
		FileName:          row.FileName,
		EventName:         row.EventName,
		ProcessedAt:       row.ProcessedTS,
	}
	for _, it := range sorted {
		rec.LineItems = append(rec.LineItems, domain.LineItem{
			Description:    it.Description,
			Amount:         it.AmountText,
			Category:       it.CategoryName,
			Justification:  it.Justification,
			NeedsApproval:  it.NeedsApproval,
			ApprovalReason: it.ApprovalReason,
		})
	}
	return rec
}

// ModelOutputRowFrom maps a raw model response onto a model_outputs row.
func ModelOutputRowFrom(out domain.ModelOutput) *ModelOutputRow {
	row := &ModelOutputRow{
		OutputID:  uuid.New().String(),
		RunID:     out.RunID,
		Source:    out.Source,
		ModelName: out.ModelName,
		RawText:   out.Raw,
		CreatedTS: out.CreatedAt.UTC(),
	}
	if out.EventName != "" {
		row.EventName = bigquery.NullString{StringVal: out.EventName, Valid: true}
	}
	return row
}

func parseNullDate(s string) bigquery.NullDate {
	d, err := civil.ParseDate(s)
	if err != nil {
		return bigquery.NullDate{}
	}
	return bigquery.NullDate{Date: d, Valid: true}
}

func amountRat(s string) *big.Rat {
	d, err := domain.ParseAmount(s)
	if err != nil {
		return nil
	}
	return d.Rat()
}
