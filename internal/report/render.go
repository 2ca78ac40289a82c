package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

// Defaults for RenderOptions.
const (
	DefaultTitle    = "CLUB EXPENSE SUMMARY REPORT"
	DefaultApprover = "treasurer/advisor"

	generatedLayout = "2006-01-02 15:04:05"
)

// RenderOptions controls the wording of the aggregate report.
type RenderOptions struct {
	Title       string
	Approver    string
	GeneratedAt time.Time
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Approver == "" {
		o.Approver = DefaultApprover
	}
	return o
}

// RenderReceiptSummary renders one receipt as a plain-text reimbursement summary.
func RenderReceiptSummary(rec domain.Record) string {
	var b strings.Builder

	b.WriteString("=== REIMBURSEMENT SUMMARY ===\n\n")
	fmt.Fprintf(&b, "MERCHANT: %s | DATE: %s | LOCATION: %s\n\n", rec.Merchant, rec.Date, rec.Location)

	b.WriteString("LINE ITEMS:\n")
	for _, item := range rec.LineItems {
		approval := ""
		if item.NeedsApproval {
			approval = fmt.Sprintf(" [NEEDS APPROVAL: %s]", orDefault(item.ApprovalReason, "Reason not specified"))
		}
		fmt.Fprintf(&b, "• %-40s | $%7s | %s | Justification: %s%s\n",
			item.Description, item.Amount, item.Category, orDefault(item.Justification, "N/A"), approval)
	}

	b.WriteString("\nTOTALS:\n")
	fmt.Fprintf(&b, "Subtotal: $%s\n", rec.Subtotal)
	fmt.Fprintf(&b, "Tax:      $%s\n", rec.Tax)
	fmt.Fprintf(&b, "TOTAL:    $%s\n", rec.ReceiptTotal)
	fmt.Fprintf(&b, "\nRECEIPT QUALITY: %s\n", rec.CompletenessScore)

	if rec.HasFlags() {
		b.WriteString("\nFLAGS:\n")
		for _, flag := range rec.Flags {
			fmt.Fprintf(&b, "- %s\n", flag)
		}
	}

	return b.String()
}

// RenderAggregateReport renders the batch report. With zero receipts it
// renders an explicit nothing-to-report notice instead of empty sections.
func RenderAggregateReport(rep *Report, receiptCount, lineItemCount int, opts RenderOptions) string {
	opts = opts.withDefaults()
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s ===\n", opts.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", opts.GeneratedAt.Format(generatedLayout))

	if rep == nil || receiptCount == 0 {
		b.WriteString("No receipts were successfully analyzed. Nothing to report.\n")
		return b.String()
	}

	b.WriteString("FINANCIAL OVERVIEW:\n")
	fmt.Fprintf(&b, "Total Amount Submitted: $%s\n", rep.TotalSpent.StringFixed(2))
	fmt.Fprintf(&b, "Number of Receipts Processed: %d\n", receiptCount)
	fmt.Fprintf(&b, "Number of Line Items: %d\n", lineItemCount)

	b.WriteString("\nSPENDING BY CATEGORY:\n")
	for _, c := range rep.RankedCategories() {
		fmt.Fprintf(&b, "  - %-25s $%8s (%s%%)\n", c.Name, c.Amount.StringFixed(2), rep.Percent(c.Amount).StringFixed(1))
	}

	b.WriteString("\nTOP VENDORS:\n")
	for _, v := range rep.TopVendors(TopVendorLimit) {
		fmt.Fprintf(&b, "  - %-25s $%8s\n", v.Name, v.Amount.StringFixed(2))
	}

	if len(rep.ApprovalItems) > 0 {
		fmt.Fprintf(&b, "\nITEMS REQUIRING APPROVAL (%d):\n", len(rep.ApprovalItems))
		for _, item := range rep.ApprovalItems {
			fmt.Fprintf(&b, "  - %s - $%s (%s) | File: %s\n", item.Item, item.Amount.StringFixed(2), item.Reason, item.File)
		}
	}

	if len(rep.FlaggedReceipts) > 0 {
		fmt.Fprintf(&b, "\nFLAGGED RECEIPTS (%d):\n", len(rep.FlaggedReceipts))
		for _, fr := range rep.FlaggedReceipts {
			fmt.Fprintf(&b, "  - %s (Score: %s)\n", fr.File, fr.Score)
			for _, flag := range fr.Flags {
				fmt.Fprintf(&b, "    - %s\n", flag)
			}
		}
	}

	b.WriteString("\nRECOMMENDATIONS:\n")
	b.WriteString("  - Review the generated CSV file for accuracy before submitting.\n")
	if n := len(rep.ApprovalItems); n > 0 {
		fmt.Fprintf(&b, "  - Seek %s sign-off for the %d item(s) requiring approval.\n", opts.Approver, n)
	}
	if n := len(rep.FlaggedReceipts); n > 0 {
		fmt.Fprintf(&b, "  - Check the original images for the %d flagged receipt(s) to clarify issues.\n", n)
	}

	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
