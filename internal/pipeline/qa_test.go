package pipeline_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/receipt-processor/internal/domain"
	"github.com/dvloznov/receipt-processor/internal/pipeline"
)

// MockTextGenerator is a mock implementation of TextGenerator for testing.
type MockTextGenerator struct {
	GenerateTextFunc func(ctx context.Context, prompt string) (string, error)
	Prompts          []string
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt)
	}
	return "The total was $35.00.", nil
}

func qaRecord() domain.Record {
	return domain.Record{
		Merchant:     "Acme Hardware",
		Date:         "2024-02-10",
		Location:     "Austin, TX",
		Subtotal:     "33.00",
		Tax:          "2.00",
		ReceiptTotal: "35.00",
		LineItems: []domain.LineItem{
			{Description: "Wrench", Amount: "15.00", Category: "Tools & Equipment", Justification: "Chassis work"},
			{Description: "Beer", Amount: "20.00", Category: "Food & Beverage", NeedsApproval: true, ApprovalReason: "Alcohol"},
		},
		Flags:             []string{"Potentially personal items found"},
		CompletenessScore: "B",
		FileName:          "acme.jpg",
		EventName:         "Build Night",
		ProcessedAt:       time.Date(2024, 2, 11, 9, 30, 0, 0, time.UTC),
	}
}

func TestFormatReceiptContext(t *testing.T) {
	noFlags := qaRecord()
	noFlags.Flags = []string{}
	noFlags.ProcessedAt = time.Time{}

	tests := []struct {
		name    string
		rec     domain.Record
		want    []string
		notWant []string
	}{
		{
			name: "full record",
			rec:  qaRecord(),
			want: []string{
				"- Merchant: Acme Hardware\n",
				"- Date: 2024-02-10\n",
				"- Total Amount: $35.00\n",
				"- Tax: $2.00\n",
				"1. Wrench\n   - Amount: $15.00\n   - Category: Tools & Equipment\n   - Justification: Chassis work\n   - Needs Approval: false\n",
				"2. Beer\n",
				"   - Justification: N/A\n   - Needs Approval: true\n   - Approval Reason: Alcohol\n",
				"FLAGS/ISSUES:\n- Potentially personal items found\n",
				"Quality Score: B\n",
				"Processed: 2024-02-11 09:30:00\n",
			},
		},
		{
			name:    "no flags and no processing time",
			rec:     noFlags,
			want:    []string{"Processed: N/A\n"},
			notWant: []string{"FLAGS/ISSUES"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pipeline.FormatReceiptContext(tt.rec)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("context missing %q\n%s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("context should not contain %q\n%s", nw, got)
				}
			}
		})
	}
}

func TestSuggestedQuestions(t *testing.T) {
	const (
		issues = "Are there any issues with this receipt?"
		count  = "How many items were purchased?"
	)

	oneItem := qaRecord()
	oneItem.Flags = nil
	oneItem.LineItems = oneItem.LineItems[:1]

	flaggedOneItem := qaRecord()
	flaggedOneItem.LineItems = flaggedOneItem.LineItems[:1]

	manyItems := qaRecord()
	manyItems.Flags = nil

	tests := []struct {
		name      string
		rec       domain.Record
		wantExtra []string
	}{
		{name: "plain receipt", rec: oneItem, wantExtra: nil},
		{name: "flagged receipt", rec: flaggedOneItem, wantExtra: []string{issues}},
		{name: "several items", rec: manyItems, wantExtra: []string{count}},
		{name: "flagged with several items", rec: qaRecord(), wantExtra: []string{issues, count}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pipeline.SuggestedQuestions(tt.rec)
			if len(got) != 8+len(tt.wantExtra) {
				t.Fatalf("got %d questions, want %d: %v", len(got), 8+len(tt.wantExtra), got)
			}
			if got[0] != "What was the total amount spent?" {
				t.Errorf("first question = %q", got[0])
			}
			extra := got[8:]
			if len(tt.wantExtra) == 0 {
				extra = nil
			}
			if !reflect.DeepEqual(extra, tt.wantExtra) {
				t.Errorf("extra questions = %v, want %v", extra, tt.wantExtra)
			}
		})
	}
}

func TestReceiptQA_Ask(t *testing.T) {
	gen := &MockTextGenerator{
		GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
			return "  You spent $35.00 at Acme Hardware.\n", nil
		},
	}
	qa := pipeline.NewReceiptQA(gen)

	answer, err := qa.Ask(context.Background(), qaRecord(), " What was the total? ")
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}
	if answer != "You spent $35.00 at Acme Hardware." {
		t.Errorf("answer = %q", answer)
	}

	if len(gen.Prompts) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(gen.Prompts))
	}
	prompt := gen.Prompts[0]
	for _, w := range []string{
		"- Merchant: Acme Hardware",
		"User Question: What was the total?\n",
		"Answer the question based ONLY on the provided receipt data",
	} {
		if !strings.Contains(prompt, w) {
			t.Errorf("prompt missing %q", w)
		}
	}
}

func TestReceiptQA_AskErrors(t *testing.T) {
	modelErr := errors.New("quota exceeded")

	tests := []struct {
		name      string
		question  string
		genErr    error
		wantErr   error
		wantCalls int
	}{
		{name: "blank question", question: "   ", wantErr: pipeline.ErrEmptyQuestion, wantCalls: 0},
		{name: "model failure", question: "What store?", genErr: modelErr, wantErr: modelErr, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockTextGenerator{
				GenerateTextFunc: func(ctx context.Context, prompt string) (string, error) {
					return "", tt.genErr
				},
			}

			_, err := pipeline.NewReceiptQA(gen).Ask(context.Background(), qaRecord(), tt.question)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Ask() error = %v, want %v", err, tt.wantErr)
			}
			if len(gen.Prompts) != tt.wantCalls {
				t.Errorf("model calls = %d, want %d", len(gen.Prompts), tt.wantCalls)
			}
		})
	}
}
