package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/dvloznov/receipt-processor/internal/config"
	"github.com/dvloznov/receipt-processor/internal/domain"
	infraBQ "github.com/dvloznov/receipt-processor/internal/infra/bigquery"
	"github.com/dvloznov/receipt-processor/internal/logger"
	"github.com/dvloznov/receipt-processor/internal/metrics"
	"github.com/dvloznov/receipt-processor/internal/notionsync"
	"github.com/dvloznov/receipt-processor/internal/pipeline"
	"github.com/dvloznov/receipt-processor/internal/report"
	"github.com/dvloznov/receipt-processor/internal/storage"
)

type outputFlags struct {
	archive     bool
	notion      bool
	notionDry   bool
	xlsx        bool
	pdf         bool
	reportTitle string
}

func registerOutputFlags(fs *flag.FlagSet) *outputFlags {
	f := &outputFlags{}
	fs.BoolVar(&f.archive, "archive", false, "Archive model output and receipts in BigQuery")
	fs.BoolVar(&f.notion, "notion", false, "Export expense rows to the Notion database")
	fs.BoolVar(&f.notionDry, "notion-dry-run", false, "Log the Notion export without creating pages")
	fs.BoolVar(&f.xlsx, "xlsx", false, "Also write an .xlsx workbook")
	fs.BoolVar(&f.pdf, "pdf", false, "Also write a PDF of the summary")
	fs.StringVar(&f.reportTitle, "title", "", "Report title (overrides RECEIPTS_REPORT_TITLE)")
	return f
}

// app wires the collaborators a command needs.
type app struct {
	cfg   *config.Config
	flags outputFlags
	log   zerolog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	images  *storage.ImageStore
	archive *infraBQ.BigQueryReceiptRepository
	gemini  *pipeline.GeminiAnalyzer
}

func clientOptions(cfg *config.Config) []option.ClientOption {
	if cfg.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
}

func newApp(ctx context.Context, cfg *config.Config, flags outputFlags) (*app, error) {
	reg := prometheus.NewRegistry()
	a := &app{
		cfg:      cfg,
		flags:    flags,
		log:      logger.FromContext(ctx),
		registry: reg,
		metrics:  metrics.New(reg),
		images:   storage.NewImageStore(clientOptions(cfg)...),
	}

	if flags.notion {
		if err := cfg.RequireNotion(); err != nil {
			return nil, err
		}
	}

	if flags.archive {
		if err := cfg.RequireArchive(); err != nil {
			return nil, err
		}
		repo, err := infraBQ.NewBigQueryReceiptRepository(ctx, cfg.ProjectID, cfg.Dataset, clientOptions(cfg)...)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureTables(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		a.archive = repo
	}

	return a, nil
}

func (a *app) Close() {
	if err := a.images.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close storage client")
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close BigQuery client")
		}
	}
}

// analyzer returns the command's Gemini client, creating it on first use.
func (a *app) analyzer(ctx context.Context) (*pipeline.GeminiAnalyzer, error) {
	if a.gemini != nil {
		return a.gemini, nil
	}
	if err := a.cfg.RequireAnalyzer(); err != nil {
		return nil, err
	}
	g, err := pipeline.NewGeminiAnalyzer(ctx, a.cfg.GeminiAPIKey, a.cfg.Model)
	if err != nil {
		return nil, err
	}
	a.gemini = g
	return g, nil
}

func (a *app) processor(ctx context.Context) (*pipeline.Processor, error) {
	analyzer, err := a.analyzer(ctx)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Images:     a.images,
		Analyzer:   analyzer,
		Normalizer: pipeline.NewNormalizer(),
		Metrics:    a.metrics,
		ModelName:  analyzer.ModelName(),
	}
	// leave Archive as a nil interface when archiving is off
	if a.archive != nil {
		deps.Archive = a.archive
	}
	return pipeline.NewProcessor(deps), nil
}

// sink writes into <output dir>/<subdir> and, when a report bucket is
// configured, into the bucket as well.
func (a *app) sink(ctx context.Context, subdir string) storage.MultiSink {
	sinks := storage.MultiSink{&storage.LocalSink{Dir: filepath.Join(a.cfg.OutputDir, subdir)}}
	if a.cfg.ReportBucket == "" {
		return sinks
	}

	client, err := a.images.Client(ctx)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("GCS unavailable, writing reports locally only")
		return sinks
	}
	return append(sinks, &storage.GCSSink{
		Client: client,
		Bucket: a.cfg.ReportBucket,
		Prefix: storage.ObjectName(a.cfg.ReportPrefix, subdir),
	})
}

func (a *app) renderOptions() report.RenderOptions {
	title := a.cfg.ReportTitle
	if a.flags.reportTitle != "" {
		title = a.flags.reportTitle
	}
	return report.RenderOptions{
		Title:       title,
		Approver:    a.cfg.Approver,
		GeneratedAt: time.Now(),
	}
}

func (a *app) publish(ctx context.Context, event string, records []domain.Record, subdir string) error {
	out, err := report.PublishBatch(ctx, a.sink(ctx, subdir), event, records, report.PublishOptions{
		Render: a.renderOptions(),
		XLSX:   a.flags.xlsx,
		PDF:    a.flags.pdf,
	})
	fmt.Print(out.Text)
	if errors.Is(err, report.ErrNothingToReport) {
		return nil
	}
	if err != nil {
		return err
	}

	a.metrics.ObserveReport()
	a.metrics.AddSkippedAmounts(out.Report.SkippedAmounts)
	printLocations(out.Locations)
	return nil
}

func (a *app) exportNotion(ctx context.Context, records []domain.Record) error {
	if !a.flags.notion || len(records) == 0 {
		return nil
	}
	exporter := notionsync.NewExporter(notionsync.NewNotionClient(a.cfg.NotionToken, notionsync.DefaultRetries), a.cfg.NotionDatabaseID, a.flags.notionDry)
	created, err := exporter.ExportRows(ctx, report.ExportRows(records))
	if err != nil {
		return fmt.Errorf("notion export stopped after %d rows: %w", created, err)
	}
	fmt.Printf("Exported %d rows to Notion\n", created)
	return nil
}

// selectRecords narrows an event's records to the one named file, or keeps
// them all when file is empty.
func selectRecords(records []domain.Record, event, file string) ([]domain.Record, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no archived receipts for event %q", event)
	}
	if file == "" {
		return records, nil
	}
	for _, rec := range records {
		if rec.FileName == file {
			return []domain.Record{rec}, nil
		}
	}
	return nil, fmt.Errorf("no receipt %q in event %q", file, event)
}

func (a *app) writeMetrics() {
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsFile, a.registry); err != nil {
		a.log.Warn().Err(err).Str("path", a.cfg.MetricsFile).Msg("Failed to write metrics file")
	}
}
