package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// MemorySink keeps written files in memory.
type MemorySink struct {
	Files   map[string][]byte
	FailOn  string
	written []string
}

func (m *MemorySink) WriteAll(ctx context.Context, name, contentType string, data []byte) ([]string, error) {
	if name == m.FailOn {
		return nil, errors.New("disk full")
	}
	if m.Files == nil {
		m.Files = map[string][]byte{}
	}
	m.Files[name] = data
	m.written = append(m.written, name)
	return []string{"mem://" + name}, nil
}

func TestPublishBatch(t *testing.T) {
	at := time.Date(2024, 2, 11, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		opts      PublishOptions
		wantFiles []string
	}{
		{
			name:      "csv and summary",
			opts:      PublishOptions{Render: RenderOptions{GeneratedAt: at}},
			wantFiles: []string{"Build_Night_20240211_093000_expenses.csv", "Build_Night_20240211_093000_summary.txt"},
		},
		{
			name: "with xlsx and pdf",
			opts: PublishOptions{Render: RenderOptions{GeneratedAt: at}, XLSX: true, PDF: true},
			wantFiles: []string{
				"Build_Night_20240211_093000_expenses.csv",
				"Build_Night_20240211_093000_summary.txt",
				"Build_Night_20240211_093000_expenses.xlsx",
				"Build_Night_20240211_093000_summary.pdf",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &MemorySink{}
			out, err := PublishBatch(context.Background(), sink, "Build Night", acmeRecords(), tt.opts)
			if err != nil {
				t.Fatalf("PublishBatch() error: %v", err)
			}
			if strings.Join(sink.written, ",") != strings.Join(tt.wantFiles, ",") {
				t.Errorf("written = %v, want %v", sink.written, tt.wantFiles)
			}
			if len(out.Locations) != len(tt.wantFiles) {
				t.Errorf("locations = %v", out.Locations)
			}
			if len(out.Rows) != 2 {
				t.Errorf("rows = %d, want 2", len(out.Rows))
			}
			summary := string(sink.Files["Build_Night_20240211_093000_summary.txt"])
			if summary != out.Text {
				t.Error("summary file does not match rendered text")
			}
			if !strings.Contains(summary, "Total Amount Submitted: $35.00") {
				t.Errorf("summary missing total:\n%s", summary)
			}
		})
	}
}

func TestPublishBatch_NothingToReport(t *testing.T) {
	sink := &MemorySink{}
	out, err := PublishBatch(context.Background(), sink, "Empty", nil, PublishOptions{})
	if !errors.Is(err, ErrNothingToReport) {
		t.Fatalf("error = %v, want ErrNothingToReport", err)
	}
	if len(sink.written) != 0 {
		t.Errorf("expected no files, got %v", sink.written)
	}
	if !strings.Contains(out.Text, "Nothing to report") {
		t.Errorf("text = %q", out.Text)
	}
}

func TestPublishBatch_SinkError(t *testing.T) {
	at := time.Date(2024, 2, 11, 9, 30, 0, 0, time.UTC)
	sink := &MemorySink{FailOn: "Build_Night_20240211_093000_summary.txt"}

	out, err := PublishBatch(context.Background(), sink, "Build Night", acmeRecords(), PublishOptions{Render: RenderOptions{GeneratedAt: at}})
	if err == nil {
		t.Fatal("expected error from sink")
	}
	if len(out.Locations) != 1 {
		t.Errorf("locations = %v, want only the CSV", out.Locations)
	}
}

func TestPublishSingle(t *testing.T) {
	sink := &MemorySink{}
	rec := acmeRecords()[0]
	rec.FileName = "receipt_01.jpeg"

	text, locs, err := PublishSingle(context.Background(), sink, rec)
	if err != nil {
		t.Fatalf("PublishSingle() error: %v", err)
	}
	if len(locs) != 1 || locs[0] != "mem://receipt_01_summary.txt" {
		t.Errorf("locations = %v", locs)
	}
	if string(sink.Files["receipt_01_summary.txt"]) != text {
		t.Error("written summary does not match returned text")
	}
}
