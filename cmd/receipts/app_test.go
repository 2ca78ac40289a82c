package main

import (
	"context"
	"flag"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/receipt-processor/internal/config"
	"github.com/dvloznov/receipt-processor/internal/domain"
	"github.com/dvloznov/receipt-processor/internal/storage"
)

func TestRegisterOutputFlags(t *testing.T) {
	fs := flag.NewFlagSet("event", flag.ContinueOnError)
	name := fs.String("name", "", "")
	flags := registerOutputFlags(fs)

	err := fs.Parse([]string{"-name", "Regionals", "-xlsx", "-pdf", "-title", "TEAM REPORT", "a.jpg", "b.jpg"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if *name != "Regionals" {
		t.Errorf("name = %q", *name)
	}
	if !flags.xlsx || !flags.pdf || flags.archive || flags.notion {
		t.Errorf("flags = %+v", *flags)
	}
	if flags.reportTitle != "TEAM REPORT" {
		t.Errorf("reportTitle = %q", flags.reportTitle)
	}
	if fs.NArg() != 2 {
		t.Errorf("NArg = %d, want 2", fs.NArg())
	}
}

func TestApp_RenderOptions(t *testing.T) {
	cfg := &config.Config{ReportTitle: "CLUB EXPENSE SUMMARY REPORT", Approver: "treasurer/advisor"}

	a := &app{cfg: cfg}
	if got := a.renderOptions().Title; got != cfg.ReportTitle {
		t.Errorf("Title = %q, want config title", got)
	}

	a.flags.reportTitle = "BUSINESS EXPENSE REPORT"
	opts := a.renderOptions()
	if opts.Title != "BUSINESS EXPENSE REPORT" {
		t.Errorf("Title = %q, want flag override", opts.Title)
	}
	if opts.Approver != "treasurer/advisor" || opts.GeneratedAt.IsZero() {
		t.Errorf("opts = %+v", opts)
	}
}

func TestApp_SinkLocalOnly(t *testing.T) {
	dir := t.TempDir()
	a := &app{
		cfg:    &config.Config{OutputDir: dir},
		images: storage.NewImageStore(),
	}

	sink := a.sink(context.Background(), batchDir)
	if len(sink) != 1 {
		t.Fatalf("expected only the local sink, got %d", len(sink))
	}

	locs, err := sink.WriteAll(context.Background(), "x_summary.txt", "text/plain", []byte("ok"))
	if err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}
	if want := filepath.Join(dir, batchDir, "x_summary.txt"); len(locs) != 1 || locs[0] != want {
		t.Errorf("locations = %v, want [%s]", locs, want)
	}
}

func TestClientOptions(t *testing.T) {
	if opts := clientOptions(&config.Config{}); len(opts) != 0 {
		t.Errorf("expected no options without a credentials file, got %d", len(opts))
	}
	if opts := clientOptions(&config.Config{CredentialsFile: "/tmp/sa.json"}); len(opts) != 1 {
		t.Errorf("expected one option, got %d", len(opts))
	}
}

func TestIsHelp(t *testing.T) {
	tests := []struct {
		cmd  string
		want bool
	}{
		{"help", true},
		{"-h", true},
		{"--help", true},
		{"single", false},
		{"ask", false},
		{"HELP", false},
	}

	for _, tt := range tests {
		if got := isHelp(tt.cmd); got != tt.want {
			t.Errorf("isHelp(%q) = %v, want %v", tt.cmd, got, tt.want)
		}
	}
}

func TestPreflight(t *testing.T) {
	broken := &config.Config{LogLevel: "info", LogFormat: "xml", Timeout: -1}
	valid := &config.Config{Model: "gemini-2.5-flash", OutputDir: "results", Timeout: time.Minute, LogLevel: "info", LogFormat: "console"}

	tests := []struct {
		name     string
		cmd      string
		cfg      *config.Config
		wantHelp bool
		wantErr  bool
	}{
		{name: "help with broken config", cmd: "help", cfg: broken, wantHelp: true},
		{name: "dash h with broken config", cmd: "-h", cfg: broken, wantHelp: true},
		{name: "command with broken config", cmd: "single", cfg: broken, wantErr: true},
		{name: "command with valid config", cmd: "ask", cfg: valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			help, err := preflight(tt.cmd, tt.cfg)
			if help != tt.wantHelp {
				t.Errorf("help = %v, want %v", help, tt.wantHelp)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("preflight() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSelectRecords(t *testing.T) {
	records := []domain.Record{
		{FileName: "a.jpg", Merchant: "Acme"},
		{FileName: "b.jpg", Merchant: "Corner Store"},
	}

	tests := []struct {
		name      string
		records   []domain.Record
		file      string
		wantFiles []string
		wantErr   bool
	}{
		{name: "all records", records: records, wantFiles: []string{"a.jpg", "b.jpg"}},
		{name: "named file", records: records, file: "b.jpg", wantFiles: []string{"b.jpg"}},
		{name: "unknown file", records: records, file: "c.jpg", wantErr: true},
		{name: "empty event", records: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectRecords(tt.records, "Regionals", tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("selectRecords() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.wantFiles) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.wantFiles))
			}
			for i, rec := range got {
				if rec.FileName != tt.wantFiles[i] {
					t.Errorf("record %d = %q, want %q", i, rec.FileName, tt.wantFiles[i])
				}
			}
		})
	}
}

func TestApp_AnalyzerRequiresAPIKey(t *testing.T) {
	a := &app{cfg: &config.Config{}}

	if _, err := a.analyzer(context.Background()); err == nil {
		t.Fatal("expected error without a Gemini API key")
	}
	if a.gemini != nil {
		t.Error("no client should be cached after a failed setup")
	}
}
