package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"StockFetcher/internal/batch"
	"StockFetcher/internal/collector"
	"StockFetcher/internal/config"
	"StockFetcher/internal/exporter"
	"StockFetcher/internal/model"
	"StockFetcher/internal/notifier"
	"StockFetcher/internal/recorder"
	"StockFetcher/internal/report"
	"StockFetcher/internal/scheduler"
)

const (
	exitOK     = 0
	exitConfig = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	days       int
	daysSet    bool
	configPath string
	xlsxPath   string
	schedule   string
	tickers    []string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}

	opts := &options{}
	fs := flag.NewFlagSet("stockfetcher", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.days, "days", 30, "number of calendar days to look back")
	fs.StringVar(&opts.configPath, "config", defaultConfig, "path to the YAML config file")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "also export the batch to this .xlsx file")
	fs.StringVar(&opts.schedule, "schedule", "", "cron spec to rerun the batch on (empty runs once)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: stockfetcher [flags] [TICKERS]\n\n")
		fmt.Fprintf(fs.Output(), "TICKERS is a symbol or a comma-separated list (default %s).\n\nFlags:\n", model.DefaultTicker)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "days" {
			opts.daysSet = true
		}
	})
	if opts.daysSet && opts.days <= 0 {
		fmt.Fprintf(stderr, "invalid -days %d: must be positive\n", opts.days)
		fs.Usage()
		return nil, errors.New("invalid -days")
	}
	opts.tickers = strings.Split(strings.Join(fs.Args(), ","), ",")
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitUsage
	}

	// Load config
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Printf("[FATAL] load config: %v", err)
		return exitConfig
	}
	if opts.daysSet {
		cfg.LookbackDays = opts.days
	}
	if opts.xlsxPath != "" {
		cfg.Export.XLSXPath = opts.xlsxPath
	}
	if opts.schedule != "" {
		cfg.Schedule.Cron = opts.schedule
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("[FATAL] config validation: %v", err)
		return exitConfig
	}

	// Init fetcher
	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	runner := batch.NewRunner(fetcher, rec, model.TickerSymbol(cfg.DefaultTicker), cfg.LookbackDays)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule.Cron == "" {
		return runOnce(ctx, runner, opts.tickers, cfg.Export.XLSXPath, stdout)
	}
	return runScheduled(ctx, cfg, runner, opts.tickers, stdout)
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 100}
	default:
		var opts []collector.YahooOption
		if cfg.DataSource.BaseURL != "" {
			opts = append(opts, collector.WithBaseURL(cfg.DataSource.BaseURL))
		}
		return collector.NewYahooFetcher(cfg.Proxy, opts...)
	}
}

func runOnce(ctx context.Context, runner *batch.Runner, tickers []string, xlsxPath string, stdout io.Writer) int {
	res := runner.Run(ctx, tickers)
	if err := report.WriteBatch(stdout, res); err != nil {
		log.Printf("[ERROR] %v", err)
		return exitConfig
	}
	if xlsxPath != "" {
		if err := exporter.WriteXLSX(xlsxPath, res); err != nil {
			log.Printf("[ERROR] export xlsx: %v", err)
			return exitConfig
		}
	}
	return exitOK
}

func runScheduled(ctx context.Context, cfg *config.Config, runner *batch.Runner, tickers []string, stdout io.Writer) int {
	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	sched := scheduler.NewScheduler(ctx, runner, tickers, stdout, tn)
	if cfg.Export.XLSXPath != "" {
		sched.AfterRun = func(res model.BatchResult) {
			if err := exporter.WriteXLSX(cfg.Export.XLSXPath, res); err != nil {
				log.Printf("[ERROR] export xlsx: %v", err)
			}
		}
	}
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Printf("[FATAL] %v", err)
		return exitConfig
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if cfg.Schedule.RunOnStart {
		log.Println("[INFO] run_on_start enabled, executing batch now")
		go sched.RunNow()
	}

	log.Println("[INFO] StockFetcher is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return exitOK
}
