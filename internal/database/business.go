package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"findly/internal/apperror"
	"findly/internal/models"
)

// GetBusiness returns a business by id, or a NotFound error.
func (db *DB) GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var b models.Business
	var bid, oid string
	err := db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, status, created_at, updated_at
		FROM businesses WHERE id = ?`, id.String(),
	).Scan(&bid, &oid, &b.Name, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.KindNotFound, "business %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	b.ID, _ = uuid.Parse(bid)
	b.OwnerID, _ = uuid.Parse(oid)
	return &b, nil
}

// GetBusinessForOwner returns the business only when owned by ownerID.
// A foreign business is reported as NotFound rather than Forbidden so the
// response does not leak which ids exist.
func (db *DB) GetBusinessForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Business, error) {
	b, err := db.GetBusiness(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, apperror.Newf(apperror.KindNotFound, "business %s not found", id)
	}
	return b, nil
}

// CreateBusiness inserts a business row. Used by seeding and tests; business
// CRUD proper lives outside this module.
func (db *DB) CreateBusiness(ctx context.Context, b *models.Business) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = models.BusinessActive
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO businesses (id, owner_id, name, status)
		VALUES (?, ?, ?, ?)`,
		b.ID.String(), b.OwnerID.String(), b.Name, string(b.Status))
	if err != nil {
		return fmt.Errorf("create business: %w", err)
	}
	return nil
}

// GetService returns an active-or-not service scoped to a business.
func (db *DB) GetService(ctx context.Context, id, businessID uuid.UUID) (*models.Service, error) {
	var s models.Service
	var sid, bid string
	err := db.QueryRowContext(ctx, `
		SELECT id, business_id, name, duration_mins, is_active, created_at, updated_at
		FROM services WHERE id = ? AND business_id = ?`,
		id.String(), businessID.String(),
	).Scan(&sid, &bid, &s.Name, &s.DurationMins, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.KindNotFound, "service %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	s.ID, _ = uuid.Parse(sid)
	s.BusinessID, _ = uuid.Parse(bid)
	return &s, nil
}

// GetServiceByID returns a service without business scoping.
func (db *DB) GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var s models.Service
	var sid, bid string
	err := db.QueryRowContext(ctx, `
		SELECT id, business_id, name, duration_mins, is_active, created_at, updated_at
		FROM services WHERE id = ?`, id.String(),
	).Scan(&sid, &bid, &s.Name, &s.DurationMins, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Newf(apperror.KindNotFound, "service %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	s.ID, _ = uuid.Parse(sid)
	s.BusinessID, _ = uuid.Parse(bid)
	return &s, nil
}

// CreateService inserts a service row.
func (db *DB) CreateService(ctx context.Context, s *models.Service) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if !s.ValidDuration() {
		return apperror.Newf(apperror.KindValidation,
			"service duration must be %d..%d minutes", models.MinServiceDurationMins, models.MaxServiceDurationMins)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO services (id, business_id, name, duration_mins, is_active)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID.String(), s.BusinessID.String(), s.Name, s.DurationMins, s.Active)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}
