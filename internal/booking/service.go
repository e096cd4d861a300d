// Package booking implements the booking write path: creation with its
// validation pipeline, and lifecycle transitions.
package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"findly/internal/apperror"
	"findly/internal/cache"
	"findly/internal/clock"
	"findly/internal/database"
	"findly/internal/events"
	"findly/internal/metrics"
	"findly/internal/models"
	"findly/internal/slots"
)

// Store is the storage surface the booking service needs.
type Store interface {
	GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error)
	GetBusinessForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Business, error)
	GetService(ctx context.Context, id, businessID uuid.UUID) (*models.Service, error)
	GetWorkingHours(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (*models.WorkingHours, error)
	FindNonTerminalBookings(ctx context.Context, businessID uuid.UUID, date time.Time) ([]models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetBookingForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Booking, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, from models.BookingStatus, eff models.Effects) error
	ListOwnerBookings(ctx context.Context, businessID uuid.UUID, filter database.OwnerBookingFilter) ([]models.Booking, error)
	ListCustomerBookings(ctx context.Context, customerID uuid.UUID) ([]models.Booking, error)
}

// Bus publishes booking events. Fire-and-forget; failures never block the
// write path.
type Bus interface {
	PublishJSON(eventType string, payload any) error
}

// Service orchestrates booking creation and lifecycle transitions.
type Service struct {
	store  Store
	clock  clock.Clock
	bus    Bus
	cache  *cache.Availability
	logger *zerolog.Logger
}

// New creates the booking service. bus and avCache may be nil.
func New(store Store, clk clock.Clock, bus Bus, avCache *cache.Availability, logger *zerolog.Logger) *Service {
	return &Service{store: store, clock: clk, bus: bus, cache: avCache, logger: logger}
}

// CreateInput carries a booking request. Exactly one of CustomerID or the
// guest fields identifies the party.
type CreateInput struct {
	BusinessID uuid.UUID
	ServiceID  uuid.UUID
	Date       time.Time
	StartTime  models.TimeOfDay
	CustomerID *uuid.UUID
	GuestName  string
	GuestPhone string
	GuestEmail string
	Notes      string
}

func (in *CreateInput) validateParty() error {
	if in.CustomerID != nil {
		if in.GuestName != "" || in.GuestPhone != "" || in.GuestEmail != "" {
			return apperror.New(apperror.KindValidation, "customer bookings must not carry guest fields")
		}
		return nil
	}
	if in.GuestName == "" {
		return apperror.New(apperror.KindValidation, "guest name is required")
	}
	if in.GuestPhone == "" {
		return apperror.New(apperror.KindValidation, "guest phone is required")
	}
	return nil
}

// Create runs the validation pipeline and persists a PENDING booking.
// Each step is a hard stop; nothing is written before every check passes,
// and the storage layer re-checks conflicts under its write lock.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Booking, error) {
	if err := in.validateParty(); err != nil {
		return nil, err
	}
	if !in.StartTime.Valid() {
		return nil, apperror.New(apperror.KindValidation, "start_time out of range")
	}

	business, err := s.store.GetBusiness(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}
	if !business.IsActive() {
		return nil, apperror.New(apperror.KindBusinessNotActive, "business is not accepting bookings")
	}

	service, err := s.store.GetService(ctx, in.ServiceID, in.BusinessID)
	if err != nil {
		return nil, err
	}
	if !service.Active {
		return nil, apperror.New(apperror.KindServiceNotActive, "service is not available")
	}

	endTime := in.StartTime.Add(service.DurationMins)

	hours, err := s.store.GetWorkingHours(ctx, in.BusinessID, models.Weekday(in.Date))
	if err != nil {
		return nil, err
	}
	if hours == nil || !hours.IsOpen() {
		return nil, apperror.New(apperror.KindBusinessClosed, "business is closed on this day")
	}

	if in.StartTime < *hours.OpenTime || endTime > *hours.CloseTime {
		return nil, apperror.New(apperror.KindOutsideHours, "requested time is outside business hours")
	}

	if hours.HasBreak() && slots.Overlaps(in.StartTime, endTime, *hours.BreakStart, *hours.BreakEnd) {
		return nil, apperror.New(apperror.KindDuringBreak, "requested time is during the business break")
	}

	existing, err := s.store.FindNonTerminalBookings(ctx, in.BusinessID, in.Date)
	if err != nil {
		return nil, err
	}
	if slots.HasConflict(in.StartTime, endTime, existing) {
		metrics.IncSlotConflict()
		return nil, apperror.New(apperror.KindSlotUnavailable, "this time slot is no longer available")
	}

	now := s.clock.Now()
	today := clock.DateOf(now)
	requested := clock.DateOf(in.Date)
	// Dates are calendar days; the instants differ by zone (the request
	// parses as UTC midnight), so instant order alone cannot decide.
	if requested.Before(today) && !clock.SameDay(requested, today) {
		return nil, apperror.New(apperror.KindDateInPast, "cannot book a past date")
	}
	if clock.SameDay(requested, today) {
		nowTod := models.TimeOfDay(now.Hour()*60 + now.Minute())
		if in.StartTime < nowTod {
			return nil, apperror.New(apperror.KindTimeInPast, "cannot book a past time")
		}
	}

	b := &models.Booking{
		ID:         uuid.New(),
		BusinessID: in.BusinessID,
		ServiceID:  in.ServiceID,
		CustomerID: in.CustomerID,
		GuestName:  in.GuestName,
		GuestPhone: in.GuestPhone,
		GuestEmail: in.GuestEmail,
		Date:       requested,
		StartTime:  in.StartTime,
		EndTime:    endTime,
		Status:     models.StatusPending,
		Notes:      in.Notes,
		BookedAt:   now,
	}

	if err := s.store.CreateBooking(ctx, b); err != nil {
		// A storage-level conflict means another booking won the slot
		// between our check and the insert; same answer either way.
		if apperror.IsKind(err, apperror.KindSlotUnavailable) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.logger.Info().
		Str("booking_id", b.ID.String()).
		Str("business_id", b.BusinessID.String()).
		Str("date", b.Date.Format(database.DateFormat)).
		Str("start", b.StartTime.String()).
		Bool("guest", b.IsGuest()).
		Msg("booking created")

	s.publish(events.TypeBookingCreated, b)
	s.invalidateAvailability(ctx, b)
	return b, nil
}

func (s *Service) publish(eventType string, b *models.Booking) {
	if s.bus == nil {
		return
	}
	payload := events.NotificationPayload{
		BookingID:  b.ID.String(),
		BusinessID: b.BusinessID.String(),
		Status:     string(b.Status),
		Date:       b.Date.Format(database.DateFormat),
		StartTime:  b.StartTime.String(),
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("publish booking event")
	}
}

func (s *Service) invalidateAvailability(ctx context.Context, b *models.Booking) {
	s.cache.Invalidate(ctx, b.BusinessID, b.Date.Format(database.DateFormat))
}
