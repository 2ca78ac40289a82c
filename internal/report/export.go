package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

// ExportHeader is the fixed column order of the expense export.
var ExportHeader = []string{
	"Event",
	"File Name",
	"Merchant",
	"Date",
	"Location",
	"Item",
	"Amount",
	"Category",
	"Justification",
	"Needs Approval",
	"Approval Reason",
	"Receipt Total",
}

// ExportRow is one line item flattened together with its receipt.
type ExportRow struct {
	Event          string
	FileName       string
	Merchant       string
	Date           string
	Location       string
	Item           string
	Amount         string
	Category       string
	Justification  string
	NeedsApproval  bool
	ApprovalReason string
	ReceiptTotal   string
}

// Values returns the row in ExportHeader order.
func (r ExportRow) Values() []string {
	approval := "False"
	if r.NeedsApproval {
		approval = "True"
	}
	return []string{
		r.Event,
		r.FileName,
		r.Merchant,
		r.Date,
		r.Location,
		r.Item,
		r.Amount,
		r.Category,
		r.Justification,
		approval,
		r.ApprovalReason,
		r.ReceiptTotal,
	}
}

// ExportRows flattens records into one row per line item, in record order.
// Records without line items contribute no rows.
func ExportRows(records []domain.Record) []ExportRow {
	rows := []ExportRow{}
	for _, rec := range records {
		for _, item := range rec.LineItems {
			rows = append(rows, ExportRow{
				Event:          rec.EventName,
				FileName:       rec.FileName,
				Merchant:       rec.Merchant,
				Date:           rec.Date,
				Location:       rec.Location,
				Item:           item.Description,
				Amount:         item.Amount,
				Category:       item.Category,
				Justification:  item.Justification,
				NeedsApproval:  item.NeedsApproval,
				ApprovalReason: item.ApprovalReason,
				ReceiptTotal:   rec.ReceiptTotal,
			})
		}
	}
	return rows
}

// WriteCSV writes the header and rows as CSV.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("WriteCSV: row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}
