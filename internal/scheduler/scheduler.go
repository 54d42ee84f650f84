package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Default eviction settings
const (
	DefaultIdleTTL       = 24 * time.Hour
	DefaultEvictInterval = 10 * time.Minute
)

// Evictor drops sessions that have been idle for longer than ttl
type Evictor interface {
	EvictIdle(ttl time.Duration) int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  Evictor
	idleTTL   time.Duration
	interval  time.Duration
	log       *zap.Logger
}

// New creates a new scheduler instance. Non-positive durations fall back to
// the defaults.
func New(sessions Evictor, idleTTL, interval time.Duration, logger *zap.Logger) *Scheduler {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if interval <= 0 {
		interval = DefaultEvictInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		sessions:  sessions,
		idleTTL:   idleTTL,
		interval:  interval,
		log:       logger,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.evictIdleSessions); err != nil {
		return fmt.Errorf("failed to schedule session eviction: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.Info("scheduler started",
		zap.Duration("idle_ttl", s.idleTTL),
		zap.Duration("interval", s.interval))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) evictIdleSessions() {
	if n := s.sessions.EvictIdle(s.idleTTL); n > 0 {
		s.log.Info("evicted idle sessions", zap.Int("count", n))
	}
}
