package domain

import (
	"time"
)

// Defaults applied by the normalizer when the model leaves a field out.
const (
	DefaultItemDescription   = "Unknown Item"
	DefaultMerchant          = "N/A"
	DefaultNotAvailable      = "Not Available"
	DefaultAmount            = "0.00"
	DefaultCompletenessScore = "N/A"
	DefaultEventName         = "General"
)

// LineItem is one purchased item on a receipt.
// Amount keeps the literal string the model produced; use ParseAmount to
// get a numeric value.
type LineItem struct {
	Description    string // from "item"
	Amount         string // from "amount"
	Category       string // from "category", see Categories
	Justification  string // from "justification"
	NeedsApproval  bool   // from "needs_approval"
	ApprovalReason string // from "approval_reason"
}

// Record is a normalized receipt with provenance attached.
// Records are treated as immutable once returned by the normalizer.
type Record struct {
	Merchant string
	Date     string
	Location string

	Subtotal     string
	Tax          string
	ReceiptTotal string

	LineItems         []LineItem
	Flags             []string
	CompletenessScore string

	FileName    string
	EventName   string
	ProcessedAt time.Time
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.LineItems = append([]LineItem(nil), r.LineItems...)
	out.Flags = append([]string(nil), r.Flags...)
	if out.LineItems == nil {
		out.LineItems = []LineItem{}
	}
	if out.Flags == nil {
		out.Flags = []string{}
	}
	return out
}

// HasFlags reports whether the model raised any issues for the receipt.
func (r Record) HasFlags() bool {
	return len(r.Flags) > 0
}
