package report

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

// ErrNothingToReport is returned when a batch produced no records.
var ErrNothingToReport = errors.New("no receipts were successfully analyzed")

// TopVendorLimit is the number of vendors shown in the aggregate report.
const TopVendorLimit = 5

// Total is a named running sum.
type Total struct {
	Name   string
	Amount decimal.Decimal
}

// ApprovalItem is a line item the model marked as needing sign-off.
type ApprovalItem struct {
	Item   string
	Amount decimal.Decimal
	Reason string
	File   string
}

// FlaggedReceipt is a receipt the model raised issues about.
type FlaggedReceipt struct {
	File  string
	Flags []string
	Score string
}

// Report is the aggregate view of a batch of receipts.
// CategoryTotals and VendorTotals are kept in first-seen order.
type Report struct {
	TotalSpent      decimal.Decimal
	CategoryTotals  []Total
	VendorTotals    []Total
	ApprovalItems   []ApprovalItem
	FlaggedReceipts []FlaggedReceipt

	// SkippedAmounts counts line items whose amount was not numeric.
	SkippedAmounts int
}

// Aggregate folds records into a Report. Line items whose amount cannot be
// parsed are left out of every numeric total. Inputs are not modified.
func Aggregate(records []domain.Record) *Report {
	rep := &Report{
		TotalSpent:      decimal.Zero,
		CategoryTotals:  []Total{},
		VendorTotals:    []Total{},
		ApprovalItems:   []ApprovalItem{},
		FlaggedReceipts: []FlaggedReceipt{},
	}
	categories := newTotals()
	vendors := newTotals()

	for _, rec := range records {
		for _, item := range rec.LineItems {
			amount, err := domain.ParseAmount(item.Amount)
			if err != nil {
				rep.SkippedAmounts++
				continue
			}

			rep.TotalSpent = rep.TotalSpent.Add(amount)
			categories.add(item.Category, amount)
			vendors.add(rec.Merchant, amount)

			if item.NeedsApproval {
				rep.ApprovalItems = append(rep.ApprovalItems, ApprovalItem{
					Item:   item.Description,
					Amount: amount,
					Reason: item.ApprovalReason,
					File:   rec.FileName,
				})
			}
		}

		if rec.HasFlags() {
			rep.FlaggedReceipts = append(rep.FlaggedReceipts, FlaggedReceipt{
				File:  rec.FileName,
				Flags: append([]string(nil), rec.Flags...),
				Score: rec.CompletenessScore,
			})
		}
	}

	rep.CategoryTotals = categories.list
	rep.VendorTotals = vendors.list
	return rep
}

// RankedCategories returns category totals by descending amount.
// Equal amounts keep first-seen order.
func (r *Report) RankedCategories() []Total {
	return rank(r.CategoryTotals)
}

// TopVendors returns at most n vendor totals by descending amount.
func (r *Report) TopVendors(n int) []Total {
	ranked := rank(r.VendorTotals)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CategoryAmount returns the total for a category and whether it was seen.
func (r *Report) CategoryAmount(name string) (decimal.Decimal, bool) {
	return lookup(r.CategoryTotals, name)
}

// VendorAmount returns the total for a vendor and whether it was seen.
func (r *Report) VendorAmount(name string) (decimal.Decimal, bool) {
	return lookup(r.VendorTotals, name)
}

// Percent returns amount as a percentage of the total spent.
// It is zero unless the total is positive.
func (r *Report) Percent(amount decimal.Decimal) decimal.Decimal {
	if !r.TotalSpent.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(r.TotalSpent).Mul(decimal.NewFromInt(100))
}

type totals struct {
	index map[string]int
	list  []Total
}

func newTotals() *totals {
	return &totals{index: map[string]int{}, list: []Total{}}
}

func (t *totals) add(name string, amount decimal.Decimal) {
	if i, ok := t.index[name]; ok {
		t.list[i].Amount = t.list[i].Amount.Add(amount)
		return
	}
	t.index[name] = len(t.list)
	t.list = append(t.list, Total{Name: name, Amount: amount})
}

func rank(in []Total) []Total {
	out := append([]Total(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

func lookup(list []Total, name string) (decimal.Decimal, bool) {
	for _, t := range list {
		if t.Name == name {
			return t.Amount, true
		}
	}
	return decimal.Zero, false
}
