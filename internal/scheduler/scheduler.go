package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/omarshaarawi/squashbot/internal/config"
	"github.com/omarshaarawi/squashbot/internal/service"
)

const pollTimeout = 2 * time.Minute

type Poller interface {
	Poll(ctx context.Context) error
}

type Scheduler struct {
	s      gocron.Scheduler
	job    gocron.Job
	poller Poller
	cfg    config.Poll
	ctx    context.Context
}

func NewScheduler(ctx context.Context, poller Poller, cfg config.Poll) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:      s,
		poller: poller,
		cfg:    cfg,
		ctx:    ctx,
	}, nil
}

func (s *Scheduler) Start() error {
	definition := gocron.DurationJob(s.cfg.Interval)
	if s.cfg.Cron != "" {
		definition = gocron.CronJob(s.cfg.Cron, false)
	}

	job, err := s.s.NewJob(
		definition,
		gocron.NewTask(s.poll),
		gocron.WithName("squashlevels-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create poll job: %w", err)
	}
	s.job = job

	s.s.Start()
	slog.Info("Scheduler started", "interval", s.cfg.Interval, "cron", s.cfg.Cron)
	return nil
}

// RunNow triggers an immediate poll outside the schedule.
func (s *Scheduler) RunNow() error {
	if s.job == nil {
		return errors.New("scheduler not started")
	}
	return s.job.RunNow()
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) poll() {
	ctx, cancel := context.WithTimeout(s.ctx, pollTimeout)
	defer cancel()

	logPollResult(s.poller.Poll(ctx))
}

func logPollResult(err error) {
	switch {
	case err == nil:
		slog.Debug("Poll complete")
	case errors.Is(err, service.ErrPollInProgress):
		slog.Info("Skipping poll, previous poll still running")
	case errors.Is(err, service.ErrProjection):
		slog.Error("Poll finished with sensor errors", "error", err)
	default:
		slog.Warn("Poll failed, keeping previous state", "error", err)
	}
}
