package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusApproved  BookingStatus = "APPROVED"
	StatusRejected  BookingStatus = "REJECTED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusNoShow    BookingStatus = "NO_SHOW"
)

// Terminal reports whether the status has no outgoing transitions.
// Terminal bookings no longer occupy their time slot.
func (s BookingStatus) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Booking is an appointment reservation for a service at a business.
// Either CustomerID is set (registered customer) or the guest fields carry
// the party's identity; never both.
type Booking struct {
	ID         uuid.UUID  `json:"id"`
	BusinessID uuid.UUID  `json:"business_id"`
	ServiceID  uuid.UUID  `json:"service_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`

	GuestName  string `json:"guest_name,omitempty"`
	GuestPhone string `json:"guest_phone,omitempty"`
	GuestEmail string `json:"guest_email,omitempty"`

	Date      time.Time `json:"date"` // calendar day, midnight local
	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`

	Status          BookingStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty"`

	BookedAt    time.Time  `json:"booked_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsGuest reports whether the booking carries guest identity.
func (b *Booking) IsGuest() bool {
	return b.CustomerID == nil
}

// OccupiesSlot reports whether the booking still blocks its time window.
func (b *Booking) OccupiesSlot() bool {
	return !b.Status.Terminal()
}

// OverlapsWith checks half-open interval overlap with another booking on the
// same date: [a,b) and [c,d) overlap iff a < d && c < b. Touching endpoints
// do not conflict.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return b.StartTime < other.EndTime && other.StartTime < b.EndTime
}
