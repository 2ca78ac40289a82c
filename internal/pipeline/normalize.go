package pipeline

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

// Metadata describes where a model response came from.
type Metadata struct {
	Source    string // local path or gs:// URI of the receipt image
	EventName string
}

// Normalizer turns parsed model output into domain records.
type Normalizer struct {
	Now func() time.Time
}

// NewNormalizer returns a Normalizer stamping records with the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize builds a Record from raw, filling defaults for anything missing.
// It never fails; an empty or nil map produces a fully defaulted record.
func (n *Normalizer) Normalize(raw map[string]interface{}, meta Metadata) domain.Record {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	now := time.Now
	if n != nil && n.Now != nil {
		now = n.Now
	}

	rec := domain.Record{
		Merchant:          getStringField(raw, "merchant", domain.DefaultMerchant),
		Date:              getStringField(raw, "date", domain.DefaultNotAvailable),
		Location:          getStringField(raw, "location", domain.DefaultNotAvailable),
		Subtotal:          getAmountField(raw, "subtotal", domain.DefaultAmount),
		Tax:               getAmountField(raw, "tax", domain.DefaultAmount),
		ReceiptTotal:      getAmountField(raw, "receipt_total", domain.DefaultAmount),
		Flags:             getStringSliceField(raw, "flags"),
		CompletenessScore: strings.ToUpper(getStringField(raw, "completeness_score", domain.DefaultCompletenessScore)),
		FileName:          SourceBaseName(meta.Source),
		EventName:         strings.TrimSpace(meta.EventName),
		ProcessedAt:       now(),
	}
	if rec.EventName == "" {
		rec.EventName = domain.DefaultEventName
	}

	items := getObjectSliceField(raw, "line_items")
	rec.LineItems = make([]domain.LineItem, 0, len(items))
	for _, obj := range items {
		rec.LineItems = append(rec.LineItems, normalizeLineItem(obj))
	}

	return rec
}

func normalizeLineItem(obj map[string]interface{}) domain.LineItem {
	return domain.LineItem{
		Description:    getFirstStringField(obj, domain.DefaultItemDescription, "item", "description"),
		Amount:         getAmountField(obj, "amount", domain.DefaultAmount),
		Category:       getStringField(obj, "category", domain.CategoryMiscellaneous),
		Justification:  getStringField(obj, "justification", ""),
		NeedsApproval:  getBoolField(obj, "needs_approval"),
		ApprovalReason: getStringField(obj, "approval_reason", ""),
	}
}

// SourceBaseName returns the file name part of a local path or gs:// URI.
func SourceBaseName(source string) string {
	if strings.HasPrefix(source, "gs://") {
		trimmed := strings.TrimPrefix(source, "gs://")
		parts := strings.SplitN(trimmed, "/", 2)
		if len(parts) < 2 || parts[1] == "" {
			return trimmed
		}
		return path.Base(parts[1])
	}
	if source == "" {
		return ""
	}
	return filepath.Base(source)
}
