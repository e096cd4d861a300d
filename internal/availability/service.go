// Package availability computes the public slot view for a business day.
package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"findly/internal/apperror"
	"findly/internal/cache"
	"findly/internal/clock"
	"findly/internal/metrics"
	"findly/internal/models"
	"findly/internal/slots"
)

// Store is the read-only storage surface the service needs.
type Store interface {
	GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error)
	GetService(ctx context.Context, id, businessID uuid.UUID) (*models.Service, error)
	GetWorkingHours(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (*models.WorkingHours, error)
	FindNonTerminalBookings(ctx context.Context, businessID uuid.UUID, date time.Time) ([]models.Booking, error)
}

// Slot is a display-only candidate window. It is never a source of truth:
// booking creation re-validates against live bookings.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// View is the availability answer for one business day.
type View struct {
	Date         string `json:"date"`
	BusinessOpen bool   `json:"business_open"`
	OpenTime     string `json:"open_time,omitempty"`
	CloseTime    string `json:"close_time,omitempty"`
	Slots        []Slot `json:"slots"`
}

// Service orchestrates schedule, slot generation and conflict marking.
type Service struct {
	store    Store
	clock    clock.Clock
	cache    *cache.Availability
	stepMins int
	logger   *zerolog.Logger
}

// New creates the availability service. stepMins is the display cadence and
// the default slot length when no service is given; zero falls back to 30.
func New(store Store, clk clock.Clock, avCache *cache.Availability, stepMins int, logger *zerolog.Logger) *Service {
	if stepMins <= 0 {
		stepMins = slots.DefaultStepMins
	}
	return &Service{store: store, clock: clk, cache: avCache, stepMins: stepMins, logger: logger}
}

// GetAvailableSlots returns the slot view for a business on a date,
// optionally sized for a specific service. A closed day answers with
// BusinessOpen=false and no slots; that is a valid result, not an error.
// Pure read: safe for any number of concurrent callers.
func (s *Service) GetAvailableSlots(ctx context.Context, businessID uuid.UUID, date time.Time, serviceID *uuid.UUID) (*View, error) {
	metrics.IncAvailabilityQueries()

	business, err := s.store.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !business.IsActive() {
		return nil, apperror.New(apperror.KindBusinessNotActive, "business is not active")
	}

	slotLen := s.stepMins
	serviceKey := "any"
	if serviceID != nil {
		service, err := s.store.GetService(ctx, *serviceID, businessID)
		if err != nil {
			return nil, err
		}
		slotLen = service.DurationMins
		serviceKey = service.ID.String()
	}

	now := s.clock.Now()
	isToday := clock.SameDay(date, now)
	dateKey := date.Format("2006-01-02")

	// Today's views shift as time passes (past slots go unavailable), so
	// only other dates are cached.
	if !isToday {
		var cached View
		if s.cache.Get(ctx, businessID, dateKey, serviceKey, &cached) {
			return &cached, nil
		}
	}

	hours, err := s.store.GetWorkingHours(ctx, businessID, models.Weekday(date))
	if err != nil {
		return nil, err
	}
	if hours == nil || !hours.IsOpen() {
		return &View{Date: dateKey, BusinessOpen: false, Slots: []Slot{}}, nil
	}

	existing, err := s.store.FindNonTerminalBookings(ctx, businessID, date)
	if err != nil {
		return nil, err
	}

	nowTod := models.TimeOfDay(now.Hour()*60 + now.Minute())

	windows := slots.Generate(*hours.OpenTime, *hours.CloseTime, slotLen, s.stepMins)
	view := &View{
		Date:         dateKey,
		BusinessOpen: true,
		OpenTime:     hours.OpenTime.String(),
		CloseTime:    hours.CloseTime.String(),
		Slots:        make([]Slot, 0, len(windows)),
	}

	for _, w := range windows {
		available := true
		if hours.HasBreak() && slots.Overlaps(w.Start, w.End, *hours.BreakStart, *hours.BreakEnd) {
			available = false
		}
		if available && slots.HasConflict(w.Start, w.End, existing) {
			available = false
		}
		if available && isToday && w.Start < nowTod {
			available = false
		}
		view.Slots = append(view.Slots, Slot{
			StartTime: w.Start.String(),
			EndTime:   w.End.String(),
			Available: available,
		})
	}

	if !isToday {
		s.cache.Set(ctx, businessID, dateKey, serviceKey, view)
	}
	return view, nil
}

// scheduleHorizonDays bounds how far ahead cached views are invalidated
// when a weekly schedule changes. Matches the booking lookahead window.
const scheduleHorizonDays = 90

// ScheduleChanged drops every cached upcoming view for the business. Called
// after a working-hours replace so stale grids do not outlive the change.
func (s *Service) ScheduleChanged(ctx context.Context, businessID uuid.UUID) {
	s.cache.InvalidateUpcoming(ctx, businessID, clock.DateOf(s.clock.Now()), scheduleHorizonDays)
}
