package report

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

func TestExportRows(t *testing.T) {
	records := acmeRecords()
	records = append(records,
		domain.Record{Merchant: "Empty", FileName: "e.jpg", LineItems: []domain.LineItem{}},
		domain.Record{
			Merchant:     "Corner Store",
			FileName:     "c.jpg",
			EventName:    "Build Night",
			ReceiptTotal: "4.00",
			LineItems:    []domain.LineItem{{Description: "Mystery", Amount: "N/A", Category: "Miscellaneous"}},
		},
	)

	rows := ExportRows(records)

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	want := []string{"Build Night", "a.jpg", "Acme", "2024-02-10", "Austin, TX", "Beer", "$20.00",
		"Food & Beverage", "Team dinner", "True", "Alcohol", "35.00"}
	if got := rows[1].Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("row 1 = %v\nwant %v", got, want)
	}
	if rows[0].Values()[9] != "False" {
		t.Errorf("Needs Approval = %q, want False", rows[0].Values()[9])
	}
	if rows[2].Amount != "N/A" {
		t.Errorf("unparseable amount should be exported verbatim, got %q", rows[2].Amount)
	}
}

func TestExportRows_NoItems(t *testing.T) {
	rows := ExportRows([]domain.Record{{Merchant: "Empty"}})
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ExportRows(acmeRecords())); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	got, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("read back CSV: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d CSV lines, want 3", len(got))
	}
	if !reflect.DeepEqual(got[0], ExportHeader) {
		t.Errorf("header = %v", got[0])
	}
	if got[2][5] != "Beer" || got[2][6] != "$20.00" {
		t.Errorf("row = %v", got[2])
	}
}

func TestBuildXLSX(t *testing.T) {
	records := acmeRecords()
	data, err := BuildXLSX(ExportRows(records), Aggregate(records), 1, 2)
	if err != nil {
		t.Fatalf("BuildXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(expensesSheet)
	if err != nil {
		t.Fatalf("GetRows(expenses): %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "Event" || rows[2][5] != "Beer" {
		t.Errorf("expenses sheet = %v", rows)
	}

	top, err := f.GetCellValue(summarySheet, "A8")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if top != "Food & Beverage" {
		t.Errorf("top category = %q, want Food & Beverage", top)
	}
}

func TestBuildTextPDF(t *testing.T) {
	text := RenderReceiptSummary(acmeRecords()[0])

	data, err := BuildTextPDF("Receipt", text)
	if err != nil {
		t.Fatalf("BuildTextPDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", data[:8])
	}
}

func TestBatchFileNames(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 5, 7, 0, time.UTC)

	got := BatchFileNames("Spring Build #2", at)

	want := FileSet{
		CSV:     "Spring_Build__2_20240301_090507_expenses.csv",
		Summary: "Spring_Build__2_20240301_090507_summary.txt",
		XLSX:    "Spring_Build__2_20240301_090507_expenses.xlsx",
		PDF:     "Spring_Build__2_20240301_090507_summary.pdf",
	}
	if got != want {
		t.Errorf("BatchFileNames() = %+v\nwant %+v", got, want)
	}
}

func TestSingleSummaryName(t *testing.T) {
	if got := SingleSummaryName("/tmp/receipts/acme.jpeg"); got != "acme_summary.txt" {
		t.Errorf("SingleSummaryName() = %q", got)
	}
}
