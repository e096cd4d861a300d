package booking

import (
	"context"

	"github.com/google/uuid"

	"findly/internal/apperror"
	"findly/internal/events"
	"findly/internal/metrics"
	"findly/internal/models"
)

// Approve moves a pending booking to APPROVED. Owner-only.
func (s *Service) Approve(ctx context.Context, ownerID, bookingID uuid.UUID) (*models.Booking, error) {
	return s.ownerTransition(ctx, ownerID, bookingID, models.ActionApprove, "")
}

// Reject moves a pending booking to REJECTED, recording a reason. Owner-only.
func (s *Service) Reject(ctx context.Context, ownerID, bookingID uuid.UUID, reason string) (*models.Booking, error) {
	return s.ownerTransition(ctx, ownerID, bookingID, models.ActionReject, reason)
}

// Complete marks an approved booking as carried out. Owner-only.
func (s *Service) Complete(ctx context.Context, ownerID, bookingID uuid.UUID) (*models.Booking, error) {
	return s.ownerTransition(ctx, ownerID, bookingID, models.ActionComplete, "")
}

// MarkNoShow records that the customer did not arrive. Owner-only.
func (s *Service) MarkNoShow(ctx context.Context, ownerID, bookingID uuid.UUID) (*models.Booking, error) {
	return s.ownerTransition(ctx, ownerID, bookingID, models.ActionNoShow, "")
}

func (s *Service) ownerTransition(ctx context.Context, ownerID, bookingID uuid.UUID, action models.Action, reason string) (*models.Booking, error) {
	b, err := s.store.GetBookingForOwner(ctx, bookingID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, b, action, reason)
}

// Cancel lets the customer who made a booking withdraw it. A booking that
// belongs to someone else is an access error, not a not-found.
func (s *Service) Cancel(ctx context.Context, customerID, bookingID uuid.UUID) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID == nil || *b.CustomerID != customerID {
		return nil, apperror.New(apperror.KindForbidden, "booking belongs to another customer")
	}
	return s.applyTransition(ctx, b, models.ActionCancel, "")
}

func (s *Service) applyTransition(ctx context.Context, b *models.Booking, action models.Action, reason string) (*models.Booking, error) {
	eff, err := models.Transition(b.Status, action, s.clock.Now(), reason)
	if err != nil {
		return nil, err
	}
	if err := s.store.ApplyTransition(ctx, b.ID, b.Status, eff); err != nil {
		return nil, err
	}
	updated, err := s.store.GetBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	metrics.IncTransition(string(action))
	s.logger.Info().
		Str("booking_id", updated.ID.String()).
		Str("action", string(action)).
		Str("status", string(updated.Status)).
		Msg("booking transition")

	s.publish(eventTypeFor(action), updated)
	// Terminal statuses free the slot; the cached view for that date is stale.
	if updated.Status.Terminal() {
		s.invalidateAvailability(ctx, updated)
	}
	return updated, nil
}

func eventTypeFor(action models.Action) string {
	switch action {
	case models.ActionApprove:
		return events.TypeBookingApproved
	case models.ActionReject:
		return events.TypeBookingRejected
	case models.ActionCancel:
		return events.TypeBookingCancelled
	case models.ActionComplete:
		return events.TypeBookingCompleted
	default:
		return events.TypeBookingNoShow
	}
}
