package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/dvloznov/receipt-processor/internal/config"
	"github.com/dvloznov/receipt-processor/internal/domain"
	"github.com/dvloznov/receipt-processor/internal/logger"
	"github.com/dvloznov/receipt-processor/internal/pipeline"
	"github.com/dvloznov/receipt-processor/internal/report"
	"github.com/dvloznov/receipt-processor/internal/storage"
)

// Output sub-directories per mode.
const (
	singleDir = "single"
	eventsDir = "events"
	batchDir  = "batch"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewFromOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	help, err := preflight(os.Args[1], cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if help {
		printUsage()
		return
	}

	switch os.Args[1] {
	case "single":
		err = runSingle(cfg, log)
	case "event":
		err = runEvent(cfg, log)
	case "batch":
		err = runBatch(cfg, log)
	case "report":
		err = runReport(cfg, log)
	case "ask":
		err = runAsk(cfg, log)
	case "upload":
		err = runUpload(cfg, log)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", os.Args[1])
	}
}

// isHelp reports whether cmd asks for usage. Help never needs a valid configuration.
func isHelp(cmd string) bool {
	switch cmd {
	case "help", "-h", "--help":
		return true
	}
	return false
}

// preflight validates the configuration for cmd. Help is answered before
// validation so it still works with a broken environment.
func preflight(cmd string, cfg *config.Config) (help bool, err error) {
	if isHelp(cmd) {
		return true, nil
	}
	return false, cfg.Validate()
}

func printUsage() {
	fmt.Println("Receipt Processor CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  receipts <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  single    Analyze one receipt image and write its summary")
	fmt.Println("  event     Analyze receipt images for a named event and write the expense report")
	fmt.Println("  batch     Analyze every image in a folder (event = folder name)")
	fmt.Println("  report    Rebuild an event report from the BigQuery archive")
	fmt.Println("  ask       Ask a question about a receipt (archived event or a new image)")
	fmt.Println("  upload    Upload a file to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'receipts <command> -h' for more information on a command.")
}

// commandContext bounds a command by the configured timeout and cancels on SIGINT/SIGTERM.
func commandContext(cfg *config.Config, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	ctx = logger.WithContext(ctx, log)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runSingle(cfg *config.Config, log zerolog.Logger) error {
	fs := flag.NewFlagSet("single", flag.ExitOnError)
	flags := registerOutputFlags(fs)
	fs.Parse(os.Args[2:])

	if fs.NArg() != 1 {
		return errors.New("usage: receipts single [options] IMAGE")
	}
	source := fs.Arg(0)

	ctx, cancel := commandContext(cfg, log)
	defer cancel()

	a, err := newApp(ctx, cfg, *flags)
	if err != nil {
		return err
	}
	defer a.Close()

	proc, err := a.processor(ctx)
	if err != nil {
		return err
	}

	log.Info().Str("source", source).Msg("Analyzing receipt")

	rec, err := proc.ProcessReceipt(ctx, source, domain.DefaultEventName)
	a.writeMetrics()
	if err != nil {
		return fmt.Errorf("analyze %s: %w", source, err)
	}

	text, locs, err := report.PublishSingle(ctx, a.sink(ctx, singleDir), rec)
	fmt.Print(text)
	if err != nil {
		return err
	}
	printLocations(locs)

	return a.exportNotion(ctx, []domain.Record{rec})
}

func runEvent(cfg *config.Config, log zerolog.Logger) error {
	fs := flag.NewFlagSet("event", flag.ExitOnError)
	name := fs.String("name", "", "Event name")
	flags := registerOutputFlags(fs)
	fs.Parse(os.Args[2:])

	if *name == "" || fs.NArg() == 0 {
		return errors.New("usage: receipts event -name NAME [options] IMAGE...")
	}

	ctx, cancel := commandContext(cfg, log)
	defer cancel()

	return processAndPublish(ctx, cfg, *flags, *name, fs.Args(), eventsDir)
}

func runBatch(cfg *config.Config, log zerolog.Logger) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	dir := fs.String("dir", "", "Folder containing receipt images")
	flags := registerOutputFlags(fs)
	fs.Parse(os.Args[2:])

	if *dir == "" {
		return errors.New("usage: receipts batch -dir DIR [options]")
	}

	sources, err := storage.DiscoverImages(*dir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Printf("No images found in %s\n", *dir)
		return nil
	}

	ctx, cancel := commandContext(cfg, log)
	defer cancel()

	event := filepath.Base(filepath.Clean(*dir))
	log.Info().Str("dir", *dir).Str("event", event).Int("images", len(sources)).Msg("Starting batch")

	return processAndPublish(ctx, cfg, *flags, event, sources, batchDir)
}

func processAndPublish(ctx context.Context, cfg *config.Config, flags outputFlags, event string, sources []string, subdir string) error {
	log := logger.FromContext(ctx)

	a, err := newApp(ctx, cfg, flags)
	if err != nil {
		return err
	}
	defer a.Close()

	proc, err := a.processor(ctx)
	if err != nil {
		return err
	}

	result := proc.ProcessBatch(ctx, sources, event)
	for _, f := range result.Failures {
		log.Warn().Err(f.Err).Str("source", f.Source).Msg("Receipt skipped")
	}

	err = a.publish(ctx, event, result.Records, subdir)
	a.writeMetrics()
	if err != nil {
		return err
	}

	return a.exportNotion(ctx, result.Records)
}

func runReport(cfg *config.Config, log zerolog.Logger) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	event := fs.String("event", "", "Event name to rebuild the report for")
	flags := registerOutputFlags(fs)
	fs.Parse(os.Args[2:])

	if *event == "" {
		return errors.New("usage: receipts report -event NAME [options]")
	}
	flags.archive = true

	ctx, cancel := commandContext(cfg, log)
	defer cancel()

	a, err := newApp(ctx, cfg, *flags)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.archive.ListRecordsByEvent(ctx, *event)
	if err != nil {
		return err
	}
	log.Info().Str("event", *event).Int("records", len(records)).Msg("Loaded archived receipts")

	err = a.publish(ctx, *event, records, eventsDir)
	a.writeMetrics()
	if err != nil {
		return err
	}

	return a.exportNotion(ctx, records)
}

func runAsk(cfg *config.Config, log zerolog.Logger) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	event := fs.String("event", "", "Event whose archived receipts to ask about")
	file := fs.String("file", "", "Only ask about this receipt file within the event")
	question := fs.String("q", "", "Question to ask (omit to list suggested questions)")
	fs.Parse(os.Args[2:])

	if fs.NArg() > 1 || (*event == "" && fs.NArg() == 0) {
		return errors.New(`usage: receipts ask -event NAME [-file NAME] [-q "QUESTION"] | receipts ask [-event NAME] [-q "QUESTION"] IMAGE`)
	}

	ctx, cancel := commandContext(cfg, log)
	defer cancel()

	fromImage := fs.NArg() == 1
	a, err := newApp(ctx, cfg, outputFlags{archive: !fromImage})
	if err != nil {
		return err
	}
	defer a.Close()

	var records []domain.Record
	if fromImage {
		proc, err := a.processor(ctx)
		if err != nil {
			return err
		}
		eventName := *event
		if eventName == "" {
			eventName = domain.DefaultEventName
		}
		rec, err := proc.ProcessReceipt(ctx, fs.Arg(0), eventName)
		a.writeMetrics()
		if err != nil {
			return fmt.Errorf("analyze %s: %w", fs.Arg(0), err)
		}
		records = []domain.Record{rec}
	} else {
		archived, err := a.archive.ListRecordsByEvent(ctx, *event)
		if err != nil {
			return err
		}
		if records, err = selectRecords(archived, *event, *file); err != nil {
			return err
		}
	}

	if *question == "" {
		for _, rec := range records {
			fmt.Printf("Suggested questions for %s:\n", rec.FileName)
			for _, sq := range pipeline.SuggestedQuestions(rec) {
				fmt.Printf("  - %s\n", sq)
			}
		}
		return nil
	}

	gen, err := a.analyzer(ctx)
	if err != nil {
		return err
	}
	qa := pipeline.NewReceiptQA(gen)
	for _, rec := range records {
		answer, err := qa.Ask(ctx, rec, *question)
		if err != nil {
			return fmt.Errorf("ask about %s: %w", rec.FileName, err)
		}
		fmt.Printf("[%s] %s\n", rec.FileName, answer)
	}
	return nil
}

func runUpload(cfg *config.Config, log zerolog.Logger) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", cfg.ReportBucket, "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		return errors.New("usage: receipts upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx, cancel := commandContext(cfg, log)
	defer cancel()

	store := storage.NewImageStore(clientOptions(cfg)...)
	defer store.Close()

	client, err := store.Client(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := storage.UploadFile(ctx, client, *bucketName, *objectName, *filePath); err != nil {
		return err
	}

	fmt.Printf("Uploaded %s to gs://%s/%s\n", *filePath, *bucketName, *objectName)
	return nil
}

func printLocations(locs []string) {
	for _, l := range locs {
		fmt.Printf("Saved: %s\n", l)
	}
}
