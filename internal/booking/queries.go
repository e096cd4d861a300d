package booking

import (
	"context"

	"github.com/google/uuid"

	"findly/internal/apperror"
	"findly/internal/database"
	"findly/internal/models"
)

// GetCustomerBooking returns one of the customer's own bookings.
func (s *Service) GetCustomerBooking(ctx context.Context, customerID, bookingID uuid.UUID) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID == nil || *b.CustomerID != customerID {
		return nil, apperror.New(apperror.KindForbidden, "booking belongs to another customer")
	}
	return b, nil
}

// ListCustomerBookings returns all bookings made by the customer, newest
// first.
func (s *Service) ListCustomerBookings(ctx context.Context, customerID uuid.UUID) ([]models.Booking, error) {
	return s.store.ListCustomerBookings(ctx, customerID)
}

// ListOwnerBookings returns bookings for one of the owner's businesses. A
// business must be named explicitly; listing across all of an owner's
// businesses is not supported.
func (s *Service) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, businessID *uuid.UUID, filter database.OwnerBookingFilter) ([]models.Booking, error) {
	if businessID == nil {
		return nil, apperror.New(apperror.KindValidation, "business_id is required")
	}
	if _, err := s.store.GetBusinessForOwner(ctx, *businessID, ownerID); err != nil {
		return nil, err
	}
	return s.store.ListOwnerBookings(ctx, *businessID, filter)
}
