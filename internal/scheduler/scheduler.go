// Package scheduler runs the periodic jobs: quote board refresh and task
// cleanup.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"stock-dashboard-backend/internal/metrics"
	"stock-dashboard-backend/internal/model"
)

// QuoteSource refreshes the live board.
type QuoteSource interface {
	Refresh() []model.Stock
}

// Publisher receives every refreshed board.
type Publisher interface {
	Publish(stocks []model.Stock)
}

// TaskCleaner drops expired tasks.
type TaskCleaner interface {
	Cleanup() int
}

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	Cron      *cron.Cron
	Quotes    QuoteSource
	Publisher Publisher
	Tasks     TaskCleaner
	Metrics   *metrics.Metrics
}

// New creates a Scheduler using second-level cron expressions.
func New(quotes QuoteSource, pub Publisher, tasks TaskCleaner, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Quotes:    quotes,
		Publisher: pub,
		Tasks:     tasks,
		Metrics:   m,
	}
}

// RegisterAll adds the refresh and cleanup jobs.
func (s *Scheduler) RegisterAll(refreshCron, cleanupCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.RefreshQuotes); err != nil {
		return fmt.Errorf("register quote refresh: %w", err)
	}
	if _, err := s.Cron.AddFunc(cleanupCron, s.CleanupTasks); err != nil {
		return fmt.Errorf("register task cleanup: %w", err)
	}
	log.Info().Str("refresh", refreshCron).Str("cleanup", cleanupCron).Msg("scheduler jobs registered")
	return nil
}

// RefreshQuotes ticks the board and publishes it.
func (s *Scheduler) RefreshQuotes() {
	stocks := s.Quotes.Refresh()
	if s.Metrics != nil {
		s.Metrics.QuoteRefreshes.Inc()
	}
	if s.Publisher != nil {
		s.Publisher.Publish(stocks)
	}
}

// CleanupTasks drops expired prediction tasks.
func (s *Scheduler) CleanupTasks() {
	if s.Tasks == nil {
		return
	}
	if n := s.Tasks.Cleanup(); n > 0 {
		log.Debug().Int("removed", n).Msg("expired prediction tasks removed")
	}
}

// Start runs the cron in its own goroutine.
func (s *Scheduler) Start() {
	s.Cron.Start()
}

// Stop stops the cron and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.Cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("scheduler stop timed out")
	}
}
