package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	expensesSheet = "expenses"
	summarySheet  = "summary"
)

// BuildXLSX renders the export rows and the category breakdown as a workbook.
// Amount cells keep the literal text the model produced.
func BuildXLSX(rows []ExportRow, rep *Report, receiptCount, lineItemCount int) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", expensesSheet); err != nil {
		return nil, fmt.Errorf("BuildXLSX: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("BuildXLSX: new sheet: %w", err)
	}

	header := make([]interface{}, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(expensesSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("BuildXLSX: header: %w", err)
	}
	for i, row := range rows {
		values := row.Values()
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		if err := f.SetSheetRow(expensesSheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return nil, fmt.Errorf("BuildXLSX: row %d: %w", i, err)
		}
	}

	_ = f.SetCellValue(summarySheet, "A1", "Expense Summary")
	_ = f.SetCellValue(summarySheet, "A3", "Total Amount Submitted")
	_ = f.SetCellValue(summarySheet, "A4", "Receipts Processed")
	_ = f.SetCellValue(summarySheet, "B4", receiptCount)
	_ = f.SetCellValue(summarySheet, "A5", "Line Items")
	_ = f.SetCellValue(summarySheet, "B5", lineItemCount)
	_ = f.SetCellValue(summarySheet, "A7", "Category")
	_ = f.SetCellValue(summarySheet, "B7", "Amount")
	_ = f.SetCellValue(summarySheet, "C7", "Percent")

	if rep != nil {
		_ = f.SetCellValue(summarySheet, "B3", rep.TotalSpent.InexactFloat64())
		for i, c := range rep.RankedCategories() {
			r := i + 8
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", r), c.Name)
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", r), c.Amount.InexactFloat64())
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", r), rep.Percent(c.Amount).Round(1).InexactFloat64())
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("BuildXLSX: write: %w", err)
	}
	return buf.Bytes(), nil
}
