package price_scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/services/pricing"
)

// Scheduler fires the daily price sweep on a cron expression. The pricing
// service itself is trigger-agnostic and idempotent per (asset, day), so
// firing more or less often than intended is safe.
type Scheduler struct {
	cron    *cron.Cron
	pricing *pricing.Service
	config  *Config
	logger  *zap.Logger

	mu       sync.RWMutex
	running  bool
	jobStats JobStatistics
}

// Config controls when and where the daily sweep runs.
type Config struct {
	// Schedule is the cron expression for the sweep (default: 00:01 daily).
	Schedule string `json:"schedule"`

	// Timezone the expression is evaluated in.
	Timezone string `json:"timezone"`

	// RunTimeout bounds one sweep.
	RunTimeout time.Duration `json:"run_timeout"`
}

// JobStatistics tracks sweep outcomes since startup.
type JobStatistics struct {
	TotalRuns      int64     `json:"total_runs"`
	SuccessfulRuns int64     `json:"successful_runs"`
	FailedRuns     int64     `json:"failed_runs"`
	LastRunTime    time.Time `json:"last_run_time"`
	LastPoints     int       `json:"last_points_written"`
	LastFailures   int       `json:"last_failures"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Schedule:   "1 0 * * *",
		Timezone:   "UTC",
		RunTimeout: 30 * time.Minute,
	}
}

// zapCronLogger wraps zap.Logger to implement cron's logger interface
type zapCronLogger struct {
	logger *zap.Logger
}

func (l *zapCronLogger) Printf(format string, args ...interface{}) {
	l.logger.Sugar().Infof(format, args...)
}

// NewScheduler creates a new price scheduler
func NewScheduler(pricingService *pricing.Service, config *Config, logger *zap.Logger) (*Scheduler, error) {
	location, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", config.Timezone, err)
	}

	c := cron.New(
		cron.WithLocation(location),
		cron.WithLogger(cron.PrintfLogger(&zapCronLogger{logger: logger})),
	)

	return &Scheduler{
		cron:    c,
		pricing: pricingService,
		config:  config,
		logger:  logger,
	}, nil
}

// Start begins the scheduled sweeps.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	_, err := s.cron.AddFunc(s.config.Schedule, s.runDailyUpdate)
	if err != nil {
		return fmt.Errorf("failed to schedule daily update: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("price scheduler started",
		zap.String("schedule", s.config.Schedule),
		zap.String("timezone", s.config.Timezone),
	)

	return nil
}

// Stop halts future sweeps and waits for a running one to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info("price scheduler stopped")
}

// Stats returns a copy of the run statistics.
func (s *Scheduler) Stats() JobStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobStats
}

func (s *Scheduler) runDailyUpdate() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RunTimeout)
	defer cancel()

	summary, err := s.pricing.DailyUpdate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobStats.TotalRuns++
	s.jobStats.LastRunTime = time.Now()
	if err != nil {
		s.jobStats.FailedRuns++
		s.logger.Error("daily price update failed", zap.Error(err))
		return
	}

	s.jobStats.SuccessfulRuns++
	s.jobStats.LastPoints = summary.PointsWritten
	s.jobStats.LastFailures = len(summary.Failures)
}
