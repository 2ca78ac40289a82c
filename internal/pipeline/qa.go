package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/receipt-processor/internal/domain"
	"github.com/dvloznov/receipt-processor/internal/logger"
)

// ErrEmptyQuestion is returned by Ask when the question is blank.
var ErrEmptyQuestion = errors.New("question is empty")

const processedLayout = "2006-01-02 15:04:05"

var baseQuestions = []string{
	"What was the total amount spent?",
	"What items were purchased?",
	"What store was this from?",
	"When was this purchase made?",
	"Are there any items that need approval?",
	"What categories of expenses are included?",
	"How much tax was paid?",
	"What was the most expensive item?",
}

// ReceiptQA answers free-form questions about one processed receipt.
type ReceiptQA struct {
	gen TextGenerator
}

// NewReceiptQA creates a ReceiptQA backed by gen.
func NewReceiptQA(gen TextGenerator) *ReceiptQA {
	return &ReceiptQA{gen: gen}
}

// Ask answers question using only the data in rec.
func (q *ReceiptQA) Ask(ctx context.Context, rec domain.Record, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("file", rec.FileName).
		Str("question", question).
		Msg("Asking about receipt")

	answer, err := q.gen.GenerateText(ctx, buildQuestionPrompt(FormatReceiptContext(rec), question))
	if err != nil {
		return "", fmt.Errorf("Ask: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// FormatReceiptContext renders rec as the plain-text context a question is answered from.
func FormatReceiptContext(rec domain.Record) string {
	var b strings.Builder

	b.WriteString("RECEIPT INFORMATION:\n")
	fmt.Fprintf(&b, "- Merchant: %s\n", rec.Merchant)
	fmt.Fprintf(&b, "- Date: %s\n", rec.Date)
	fmt.Fprintf(&b, "- Location: %s\n", rec.Location)
	fmt.Fprintf(&b, "- Total Amount: $%s\n", rec.ReceiptTotal)
	fmt.Fprintf(&b, "- Subtotal: $%s\n", rec.Subtotal)
	fmt.Fprintf(&b, "- Tax: $%s\n", rec.Tax)

	b.WriteString("\nITEMS PURCHASED:\n")
	for i, item := range rec.LineItems {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, item.Description)
		fmt.Fprintf(&b, "   - Amount: $%s\n", item.Amount)
		fmt.Fprintf(&b, "   - Category: %s\n", item.Category)
		fmt.Fprintf(&b, "   - Justification: %s\n", orNA(item.Justification))
		fmt.Fprintf(&b, "   - Needs Approval: %t\n", item.NeedsApproval)
		if item.NeedsApproval && item.ApprovalReason != "" {
			fmt.Fprintf(&b, "   - Approval Reason: %s\n", item.ApprovalReason)
		}
	}

	if rec.HasFlags() {
		b.WriteString("\nFLAGS/ISSUES:\n")
		for _, flag := range rec.Flags {
			fmt.Fprintf(&b, "- %s\n", flag)
		}
	}

	fmt.Fprintf(&b, "\nQuality Score: %s\n", rec.CompletenessScore)
	processed := "N/A"
	if !rec.ProcessedAt.IsZero() {
		processed = rec.ProcessedAt.Format(processedLayout)
	}
	fmt.Fprintf(&b, "Processed: %s\n", processed)

	return b.String()
}

// SuggestedQuestions lists starter questions for rec. Receipts with flags
// get a question about issues; receipts with several items get a count question.
func SuggestedQuestions(rec domain.Record) []string {
	out := append([]string{}, baseQuestions...)
	if rec.HasFlags() {
		out = append(out, "Are there any issues with this receipt?")
	}
	if len(rec.LineItems) > 1 {
		out = append(out, "How many items were purchased?")
	}
	return out
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
