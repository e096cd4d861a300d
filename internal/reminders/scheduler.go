// Package reminders runs a daily sweep that announces tomorrow's approved
// bookings on the event bus. Notification channels subscribe to the bus.
package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"findly/internal/clock"
	"findly/internal/database"
	"findly/internal/events"
	"findly/internal/models"
)

// Store is the storage surface the scheduler needs.
type Store interface {
	ListApprovedForDate(ctx context.Context, date time.Time) ([]models.Booking, error)
}

// Bus publishes reminder events.
type Bus interface {
	PublishJSON(eventType string, payload any) error
}

// Config controls when the daily sweep fires.
type Config struct {
	// DailyHour is the hour (0-23) when reminders are processed.
	DailyHour int
	// DailyMinute is the minute (0-59) when reminders are processed.
	DailyMinute int
	// CheckInterval is how often to check if it's time to run.
	CheckInterval time.Duration
}

// DefaultConfig fires the sweep every day at 18:00.
func DefaultConfig() Config {
	return Config{DailyHour: 18, CheckInterval: time.Minute}
}

// Scheduler publishes a reminder event for each of tomorrow's approved
// bookings, once per day.
type Scheduler struct {
	config Config
	store  Store
	bus    Bus
	clock  clock.Clock
	logger *zerolog.Logger

	mu          sync.Mutex
	lastRunDate string // YYYY-MM-DD of last run
	running     bool
	stopCh      chan struct{}
}

// NewScheduler creates the reminder scheduler.
func NewScheduler(config Config, store Store, bus Bus, clk clock.Clock, logger *zerolog.Logger) *Scheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &Scheduler{
		config: config,
		store:  store,
		bus:    bus,
		clock:  clk,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start begins the scheduler loop. Blocks until ctx is done or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().
		Int("hour", s.config.DailyHour).
		Int("minute", s.config.DailyMinute).
		Msg("reminder scheduler started")

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reminder scheduler stopped")
			return
		case <-s.stopCh:
			s.logger.Info().Msg("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// Stop ends the scheduler loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

func (s *Scheduler) checkAndRun(ctx context.Context) {
	now := s.clock.Now()
	today := now.Format(database.DateFormat)

	s.mu.Lock()
	alreadyRan := s.lastRunDate == today
	s.mu.Unlock()
	if alreadyRan {
		return
	}
	if now.Hour() != s.config.DailyHour || now.Minute() != s.config.DailyMinute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = today
	s.mu.Unlock()

	s.RunNow(ctx)
}

// RunNow publishes reminders for tomorrow's approved bookings immediately.
func (s *Scheduler) RunNow(ctx context.Context) {
	tomorrow := clock.DateOf(s.clock.Now()).AddDate(0, 0, 1)

	bookings, err := s.store.ListApprovedForDate(ctx, tomorrow)
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch bookings for reminder sweep")
		return
	}

	for i := range bookings {
		b := &bookings[i]
		payload := events.NotificationPayload{
			BookingID:  b.ID.String(),
			BusinessID: b.BusinessID.String(),
			Status:     string(b.Status),
			Date:       b.Date.Format(database.DateFormat),
			StartTime:  b.StartTime.String(),
		}
		if err := s.bus.PublishJSON(events.TypeBookingReminder, payload); err != nil {
			s.logger.Warn().Err(err).Str("booking_id", payload.BookingID).Msg("publish reminder")
		}
	}

	s.logger.Info().
		Str("date", tomorrow.Format(database.DateFormat)).
		Int("count", len(bookings)).
		Msg("reminder sweep done")
}

// IsRunning reports whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
