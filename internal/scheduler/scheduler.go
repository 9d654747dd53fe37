package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Config struct {
	Enabled      bool   `yaml:"enabled" default:"true"`
	BackfillCron string `yaml:"backfill_cron" default:"@every 10m"`
}

type Backfiller interface {
	BackfillNarratives(ctx context.Context, olderThan time.Duration) (int, error)
}

// Scheduler runs the narrative backfill on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	backfiller Backfiller
	olderThan  time.Duration
	log        zerolog.Logger
	ctx        context.Context
}

func New(ctx context.Context, b Backfiller, olderThan time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		backfiller: b,
		olderThan:  olderThan,
		log:        log,
		ctx:        ctx,
	}
}

func (s *Scheduler) Register(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return fmt.Errorf("backfill schedule is empty")
	}
	if _, err := s.cron.AddFunc(spec, s.RunBackfillNow); err != nil {
		return fmt.Errorf("register backfill task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop halts the cron loop and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) RunBackfillNow() {
	if s.ctx.Err() != nil {
		return
	}
	n, err := s.backfiller.BackfillNarratives(s.ctx, s.olderThan)
	if err != nil {
		s.log.Error().Err(err).Msg("narrative backfill failed")
		return
	}
	s.log.Debug().Int("requests", n).Msg("narrative backfill ran")
}
