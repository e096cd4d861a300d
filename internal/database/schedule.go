package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"findly/internal/models"
)

// GetWorkingHours returns the schedule entry for a weekday, or nil when the
// business has none for that day. An absent entry means closed, which is a
// valid answer, not an error.
func (db *DB) GetWorkingHours(ctx context.Context, businessID uuid.UUID, dayOfWeek int) (*models.WorkingHours, error) {
	var w models.WorkingHours
	var id, bid string
	var open, close, breakStart, breakEnd sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, business_id, day_of_week, open_time, close_time, is_closed,
		       break_start, break_end, created_at, updated_at
		FROM working_hours
		WHERE business_id = ? AND day_of_week = ?`,
		businessID.String(), dayOfWeek,
	).Scan(&id, &bid, &w.DayOfWeek, &open, &close, &w.Closed,
		&breakStart, &breakEnd, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get working hours: %w", err)
	}
	w.ID, _ = uuid.Parse(id)
	w.BusinessID, _ = uuid.Parse(bid)
	if w.OpenTime, err = nullTimeOfDay(open); err != nil {
		return nil, fmt.Errorf("working hours open_time: %w", err)
	}
	if w.CloseTime, err = nullTimeOfDay(close); err != nil {
		return nil, fmt.Errorf("working hours close_time: %w", err)
	}
	if w.BreakStart, err = nullTimeOfDay(breakStart); err != nil {
		return nil, fmt.Errorf("working hours break_start: %w", err)
	}
	if w.BreakEnd, err = nullTimeOfDay(breakEnd); err != nil {
		return nil, fmt.Errorf("working hours break_end: %w", err)
	}
	return &w, nil
}

// ReplaceWorkingHours writes all seven weekday entries for a business in one
// transaction. The previous schedule is replaced wholesale.
func (db *DB) ReplaceWorkingHours(ctx context.Context, businessID uuid.UUID, entries []models.WorkingHours) error {
	if len(entries) != 7 {
		return fmt.Errorf("expected 7 schedule entries, got %d", len(entries))
	}
	seen := make(map[int]bool, 7)
	for i := range entries {
		entries[i].BusinessID = businessID
		if err := entries[i].Validate(); err != nil {
			return err
		}
		if seen[entries[i].DayOfWeek] {
			return fmt.Errorf("duplicate schedule entry for day %d", entries[i].DayOfWeek)
		}
		seen[entries[i].DayOfWeek] = true
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace working hours: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM working_hours WHERE business_id = ?`, businessID.String()); err != nil {
		return fmt.Errorf("clear working hours: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO working_hours
				(id, business_id, day_of_week, open_time, close_time, is_closed, break_start, break_end)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID.String(), businessID.String(), e.DayOfWeek,
			timeOfDayNull(e.OpenTime), timeOfDayNull(e.CloseTime),
			e.Closed, timeOfDayNull(e.BreakStart), timeOfDayNull(e.BreakEnd))
		if err != nil {
			return fmt.Errorf("insert working hours day %d: %w", e.DayOfWeek, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit working hours: %w", err)
	}
	return nil
}

func nullTimeOfDay(v sql.NullString) (*models.TimeOfDay, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := models.ParseTimeOfDay(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func timeOfDayNull(t *models.TimeOfDay) any {
	if t == nil {
		return nil
	}
	return t.String()
}
