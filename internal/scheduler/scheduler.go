package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"StockFetcher/internal/batch"
	"StockFetcher/internal/model"
	"StockFetcher/internal/notifier"
	"StockFetcher/internal/report"
)

// specParser accepts both 5-field and 6-field (leading seconds) cron specs
// as well as descriptors such as @hourly or @every 15m.
var specParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const helpText = "Available commands:\n" +
	"  /report              run the configured tickers now\n" +
	"  /report AAPL,MSFT    run the given tickers now"

// Scheduler reruns the same batch on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *batch.Runner
	Tickers  []string
	Out      io.Writer
	Notifier *notifier.TelegramNotifier
	// AfterRun, if set, receives every completed batch.
	AfterRun func(res model.BatchResult)
	Ctx      context.Context

	mu   sync.Mutex
	runs int
}

// NewScheduler creates a new Scheduler. tn may be nil.
func NewScheduler(ctx context.Context, runner *batch.Runner, tickers []string, out io.Writer, tn *notifier.TelegramNotifier) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(
			cron.WithParser(specParser),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Runner:   runner,
		Tickers:  tickers,
		Out:      out,
		Notifier: tn,
		Ctx:      ctx,
	}
}

// Register adds the batch job for the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.batchTask); err != nil {
		return fmt.Errorf("register batch task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	for _, e := range s.Cron.Entries() {
		log.Printf("[INFO] scheduler started, next run at %s", e.Next.Format("2006-01-02 15:04:05 MST"))
	}
}

// Stop stops the cron scheduler and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the batch immediately (for manual trigger / run on start).
func (s *Scheduler) RunNow() {
	s.batchTask()
}

func (s *Scheduler) batchTask() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Ctx.Err() != nil {
		return
	}
	s.runs++
	log.Printf("[INFO] running scheduled batch #%d", s.runs)
	res := s.Runner.Run(s.Ctx, s.Tickers)

	if s.runs > 1 {
		if _, err := io.WriteString(s.Out, "\n"); err != nil {
			log.Printf("[ERROR] write report: %v", err)
		}
	}
	if err := report.WriteBatch(s.Out, res); err != nil {
		log.Printf("[ERROR] %v", err)
	}
	if s.Notifier != nil {
		for _, block := range res.Blocks() {
			s.trySend(block)
		}
	}
	if s.AfterRun != nil {
		s.AfterRun(res)
	}
}

// HandleCommand processes a chat command and returns the reply blocks.
// A /report waits for any scheduled batch in flight, so batches never overlap.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) []string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return []string{helpText}
	}
	switch strings.ToLower(fields[0]) {
	case "/report":
		tickers := s.Tickers
		if len(fields) > 1 {
			tickers = model.SplitTickers(strings.Join(fields[1:], ","))
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.Ctx.Err() != nil || ctx.Err() != nil {
			return nil
		}
		return s.Runner.Run(ctx, tickers).Blocks()
	default:
		return []string{helpText}
	}
}

func (s *Scheduler) trySend(block string) {
	if err := s.Notifier.SendBlock(s.Ctx, block, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
