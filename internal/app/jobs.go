package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/m3rciful/relaybot/core/logger"
	"github.com/m3rciful/relaybot/internal/metrics"
)

const jobsComponent = "jobs"

// Pruner deletes forwarding records past their retention.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// Jobs runs the periodic maintenance tasks.
type Jobs struct {
	scheduler gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewJobs schedules forwarding-record pruning every interval.
func NewJobs(pruner Pruner, interval time.Duration) (*Jobs, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("jobs: prune interval must be > 0")
	}
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(gocronLogger{}),
	)
	if err != nil {
		return nil, fmt.Errorf("jobs: create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &Jobs{scheduler: s, ctx: ctx, cancel: cancel}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { runPrune(j.ctx, pruner) }),
		gocron.WithName("forwards.prune"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		_ = s.Shutdown()
		return nil, fmt.Errorf("jobs: schedule prune: %w", err)
	}
	return j, nil
}

// Start begins running the scheduled jobs.
func (j *Jobs) Start() {
	j.scheduler.Start()
	logger.Info(context.Background(), jobsComponent, "jobs.start", slog.Int("count", len(j.scheduler.Jobs())))
}

// Shutdown cancels a running job and waits for the scheduler to stop.
func (j *Jobs) Shutdown() error {
	j.cancel()
	if err := j.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("jobs: shutdown: %w", err)
	}
	return nil
}

func runPrune(ctx context.Context, pruner Pruner) {
	start := time.Now()
	n, err := pruner.Prune(ctx)
	if err != nil {
		logger.Error(ctx, jobsComponent, "forwards.prune.fail",
			slog.String("err", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}
	metrics.ForwardsPruned(n)
	logger.Debug(ctx, jobsComponent, "forwards.prune.ok",
		slog.Int("deleted", n),
		slog.Duration("duration", time.Since(start)),
	)
}

// gocronLogger forwards scheduler logs to the jobs component.
type gocronLogger struct{}

func (gocronLogger) Debug(msg string, args ...any) { gocronLog(slog.LevelDebug, msg, args) }
func (gocronLogger) Info(msg string, args ...any)  { gocronLog(slog.LevelInfo, msg, args) }
func (gocronLogger) Warn(msg string, args ...any)  { gocronLog(slog.LevelWarn, msg, args) }
func (gocronLogger) Error(msg string, args ...any) { gocronLog(slog.LevelError, msg, args) }

func gocronLog(level slog.Level, msg string, args []any) {
	if logger.Jobs == nil {
		return
	}
	logger.Jobs.Log(context.Background(), level, "", append([]any{"event", "scheduler", "msg", msg}, args...)...)
}
