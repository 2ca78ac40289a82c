package notionsync

import (
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/receipt-processor/internal/domain"
	"github.com/dvloznov/receipt-processor/internal/report"
)

// Property names of the expense database. Item is the title column.
const (
	PropItem           = "Item"
	PropEvent          = "Event"
	PropFileName       = "File Name"
	PropMerchant       = "Merchant"
	PropDate           = "Date"
	PropLocation       = "Location"
	PropAmount         = "Amount"
	PropAmountText     = "Amount Text"
	PropCategory       = "Category"
	PropJustification  = "Justification"
	PropNeedsApproval  = "Needs Approval"
	PropApprovalReason = "Approval Reason"
	PropReceiptTotal   = "Receipt Total"
)

// ExpectedProperties lists every column ExportRowToNotionProperties can write.
var ExpectedProperties = []string{
	PropItem, PropEvent, PropFileName, PropMerchant, PropDate, PropLocation, PropAmount,
	PropAmountText, PropCategory, PropJustification, PropNeedsApproval, PropApprovalReason,
	PropReceiptTotal,
}

// MissingProperties returns the expected columns the database does not define, in
// ExpectedProperties order.
func MissingProperties(db *notionapi.Database) []string {
	var missing []string
	for _, name := range ExpectedProperties {
		if _, ok := db.Properties[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// ExportRowToNotionProperties converts an export row to Notion properties.
// Amount is written as a number only when the extracted text parses; the
// extracted text is always kept in Amount Text.
func ExportRowToNotionProperties(row report.ExportRow) notionapi.Properties {
	props := notionapi.Properties{
		PropItem: notionapi.TitleProperty{
			Title: richText(row.Item),
		},
		PropNeedsApproval: notionapi.CheckboxProperty{
			Checkbox: row.NeedsApproval,
		},
		PropAmountText: notionapi.RichTextProperty{
			RichText: richText(row.Amount),
		},
	}

	if row.Event != "" {
		props[PropEvent] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: row.Event},
		}
	}
	if row.Category != "" {
		props[PropCategory] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: row.Category},
		}
	}

	texts := map[string]string{
		PropFileName:       row.FileName,
		PropMerchant:       row.Merchant,
		PropDate:           row.Date,
		PropLocation:       row.Location,
		PropJustification:  row.Justification,
		PropApprovalReason: row.ApprovalReason,
		PropReceiptTotal:   row.ReceiptTotal,
	}
	for name, value := range texts {
		if value == "" {
			continue
		}
		props[name] = notionapi.RichTextProperty{RichText: richText(value)}
	}

	if amount, err := domain.ParseAmount(row.Amount); err == nil {
		f, _ := amount.Float64()
		props[PropAmount] = notionapi.NumberProperty{Number: f}
	}

	return props
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{
				Content: content,
			},
		},
	}
}

// rowKey identifies a row in log output.
func rowKey(row report.ExportRow) string {
	return fmt.Sprintf("%s#%s", row.FileName, row.Item)
}
