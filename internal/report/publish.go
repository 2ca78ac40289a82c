package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type outputFile struct {
	name        string
	contentType string
	data        []byte
}

// Sink stores a named output file in one or more places.
type Sink interface {
	WriteAll(ctx context.Context, name, contentType string, data []byte) ([]string, error)
}

// PublishOptions controls which batch outputs are produced.
type PublishOptions struct {
	Render RenderOptions
	XLSX   bool
	PDF    bool
}

// Published describes what a publish call produced.
type Published struct {
	Report    *Report
	Rows      []ExportRow
	Text      string
	Locations []string
}

// PublishBatch aggregates records and writes the expense CSV and summary
// text, plus the optional workbook and PDF. With no records it writes
// nothing and returns ErrNothingToReport alongside the rendered notice.
func PublishBatch(ctx context.Context, sink Sink, event string, records []domain.Record, opts PublishOptions) (*Published, error) {
	if opts.Render.GeneratedAt.IsZero() {
		opts.Render.GeneratedAt = time.Now()
	}

	rep := Aggregate(records)
	rows := ExportRows(records)
	lineItems := len(rows)

	out := &Published{
		Report: rep,
		Rows:   rows,
		Text:   RenderAggregateReport(rep, len(records), lineItems, opts.Render),
	}
	if len(records) == 0 {
		return out, ErrNothingToReport
	}

	names := BatchFileNames(event, opts.Render.GeneratedAt)

	var csvBuf bytes.Buffer
	if err := WriteCSV(&csvBuf, rows); err != nil {
		return out, fmt.Errorf("PublishBatch: %w", err)
	}

	files := []outputFile{
		{names.CSV, contentTypeCSV, csvBuf.Bytes()},
		{names.Summary, contentTypeText, []byte(out.Text)},
	}

	if opts.XLSX {
		data, err := BuildXLSX(rows, rep, len(records), lineItems)
		if err != nil {
			return out, fmt.Errorf("PublishBatch: %w", err)
		}
		files = append(files, outputFile{names.XLSX, contentTypeXLSX, data})
	}
	if opts.PDF {
		data, err := BuildTextPDF(opts.Render.withDefaults().Title, out.Text)
		if err != nil {
			return out, fmt.Errorf("PublishBatch: %w", err)
		}
		files = append(files, outputFile{names.PDF, contentTypePDF, data})
	}

	for _, f := range files {
		locs, err := sink.WriteAll(ctx, f.name, f.contentType, f.data)
		out.Locations = append(out.Locations, locs...)
		if err != nil {
			return out, fmt.Errorf("PublishBatch: write %s: %w", f.name, err)
		}
	}

	return out, nil
}

// PublishSingle writes the summary text of one receipt.
func PublishSingle(ctx context.Context, sink Sink, rec domain.Record) (string, []string, error) {
	text := RenderReceiptSummary(rec)
	locs, err := sink.WriteAll(ctx, SingleSummaryName(rec.FileName), contentTypeText, []byte(text))
	if err != nil {
		return text, locs, fmt.Errorf("PublishSingle: %w", err)
	}
	return text, locs, nil
}
