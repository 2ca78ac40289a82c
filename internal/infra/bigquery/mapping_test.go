package bigquery

import (
	"math/big"
	"testing"
	"time"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

func sampleRecord() domain.Record {
	return domain.Record{
		Merchant:     "Acme Hardware",
		Date:         "2024-03-05",
		Location:     "Springfield",
		Subtotal:     "$18.50",
		Tax:          "1.50",
		ReceiptTotal: "twenty",
		LineItems: []domain.LineItem{
			{Description: "Hammer", Amount: "12.00", Category: "Tools & Equipment", Justification: "Build", NeedsApproval: false},
			{Description: "Snacks", Amount: "abc", Category: "Food & Beverage", NeedsApproval: true, ApprovalReason: "Food"},
		},
		Flags:             []string{"blurry"},
		CompletenessScore: "HIGH",
		FileName:          "r1.jpg",
		EventName:         "Regionals",
		ProcessedAt:       time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC),
	}
}

func TestReceiptRowsFromRecord(t *testing.T) {
	now := time.Date(2024, 3, 7, 8, 0, 0, 0, time.UTC)
	row, items := ReceiptRowsFromRecord("run-1", sampleRecord(), now)

	if row.ReceiptID == "" {
		t.Fatal("expected receipt ID to be generated")
	}
	if row.RunID != "run-1" || row.EventName != "Regionals" || row.FileName != "r1.jpg" {
		t.Errorf("unexpected provenance: %+v", row)
	}
	if !row.PurchaseDate.Valid || row.PurchaseDate.Date.Day != 5 {
		t.Errorf("PurchaseDate = %+v, want 2024-03-05", row.PurchaseDate)
	}
	if row.SubtotalAmount == nil || row.SubtotalAmount.Cmp(big.NewRat(37, 2)) != 0 {
		t.Errorf("SubtotalAmount = %v, want 18.5", row.SubtotalAmount)
	}
	if row.TotalAmount != nil {
		t.Errorf("TotalAmount = %v, want nil for non-numeric text", row.TotalAmount)
	}
	if row.TotalText != "twenty" {
		t.Errorf("TotalText = %q, want extracted text kept", row.TotalText)
	}
	if !row.CreatedTS.Equal(now) {
		t.Errorf("CreatedTS = %v, want %v", row.CreatedTS, now)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(items))
	}
	for i, it := range items {
		if it.ReceiptID != row.ReceiptID {
			t.Errorf("item %d: ReceiptID = %q, want %q", i, it.ReceiptID, row.ReceiptID)
		}
		if it.LineIndex != int64(i) {
			t.Errorf("item %d: LineIndex = %d", i, it.LineIndex)
		}
	}
	if items[1].Amount != nil {
		t.Errorf("expected NULL amount for non-numeric line item, got %v", items[1].Amount)
	}
	if !items[1].NeedsApproval || items[1].ApprovalReason != "Food" {
		t.Errorf("approval fields not carried: %+v", items[1])
	}
}

func TestReceiptRowsFromRecord_InvalidDate(t *testing.T) {
	rec := sampleRecord()
	rec.Date = "March 5th"

	row, _ := ReceiptRowsFromRecord("run-1", rec, time.Now())
	if row.PurchaseDate.Valid {
		t.Errorf("expected NULL purchase date, got %+v", row.PurchaseDate)
	}
	if row.PurchaseDateText != "March 5th" {
		t.Errorf("PurchaseDateText = %q", row.PurchaseDateText)
	}
}

func TestRecordFromRows_RoundTrip(t *testing.T) {
	orig := sampleRecord()
	row, items := ReceiptRowsFromRecord("run-1", orig, time.Now())

	// rows come back from BigQuery in arbitrary order
	items[0], items[1] = items[1], items[0]

	got := RecordFromRows(row, items)
	if got.Merchant != orig.Merchant || got.ReceiptTotal != orig.ReceiptTotal || got.Date != orig.Date {
		t.Errorf("header fields differ: got %+v", got)
	}
	if len(got.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(got.LineItems))
	}
	for i := range orig.LineItems {
		if got.LineItems[i] != orig.LineItems[i] {
			t.Errorf("line item %d = %+v, want %+v", i, got.LineItems[i], orig.LineItems[i])
		}
	}
	if len(got.Flags) != 1 || got.Flags[0] != "blurry" {
		t.Errorf("Flags = %v", got.Flags)
	}
	if !got.ProcessedAt.Equal(orig.ProcessedAt) {
		t.Errorf("ProcessedAt = %v, want %v", got.ProcessedAt, orig.ProcessedAt)
	}
}

func TestModelOutputRowFrom(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		wantValid bool
	}{
		{name: "with event", eventName: "Regionals", wantValid: true},
		{name: "without event", eventName: "", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := ModelOutputRowFrom(domain.ModelOutput{
				RunID:     "run-1",
				Source:    "gs://bucket/r1.jpg",
				EventName: tt.eventName,
				ModelName: "gemini-2.5-flash",
				Raw:       `{"merchant":"Acme"}`,
				CreatedAt: time.Now(),
			})
			if row.OutputID == "" {
				t.Error("expected output ID to be generated")
			}
			if row.EventName.Valid != tt.wantValid {
				t.Errorf("EventName.Valid = %v, want %v", row.EventName.Valid, tt.wantValid)
			}
			if row.RawText != `{"merchant":"Acme"}` {
				t.Errorf("RawText = %q", row.RawText)
			}
		})
	}
}
