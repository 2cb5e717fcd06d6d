package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs periodic maintenance tasks such as expiring stories.
type Scheduler struct {
	s      gocron.Scheduler
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

type Task func(ctx context.Context) (int64, error)

func New(log *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{s: s, log: log, ctx: ctx, cancel: cancel}, nil
}

// Every schedules task at a fixed interval, starting immediately. A run that
// is still going when the next one is due delays it instead of overlapping.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	_, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if s.ctx.Err() != nil {
				return
			}
			ctx, cancel := context.WithTimeout(s.ctx, interval)
			defer cancel()

			affected, err := task(ctx)
			if err != nil {
				s.log.Error("scheduled job failed", "job", name, "error", err)
				return
			}
			s.log.Debug("scheduled job finished", "job", name, "affected", affected)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.s.Start()
}

func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.s.Shutdown()
}
