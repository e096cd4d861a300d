package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessStatus gates whether a business accepts bookings.
type BusinessStatus string

const (
	BusinessActive    BusinessStatus = "ACTIVE"
	BusinessInactive  BusinessStatus = "INACTIVE"
	BusinessSuspended BusinessStatus = "SUSPENDED"
)

// Business is the read-only view the scheduling core needs.
// Profile editing, categories and search live outside this module.
type Business struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Status    BusinessStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the business accepts bookings.
func (b *Business) IsActive() bool {
	return b.Status == BusinessActive
}

// Service is a bookable offering of a business. Duration is fixed into a
// booking at creation time; later edits never resize existing bookings.
type Service struct {
	ID           uuid.UUID `json:"id"`
	BusinessID   uuid.UUID `json:"business_id"`
	Name         string    `json:"name"`
	DurationMins int       `json:"duration_mins"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	MinServiceDurationMins = 5
	MaxServiceDurationMins = 480
)

// ValidDuration reports whether the service duration is within bounds.
func (s *Service) ValidDuration() bool {
	return s.DurationMins >= MinServiceDurationMins && s.DurationMins <= MaxServiceDurationMins
}
