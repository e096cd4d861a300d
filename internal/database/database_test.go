package database

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findly/internal/apperror"
	"findly/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tod(s string) models.TimeOfDay { return models.MustTimeOfDay(s) }

func todPtr(s string) *models.TimeOfDay {
	t := tod(s)
	return &t
}

type fixture struct {
	business *models.Business
	service  *models.Service
	owner    uuid.UUID
}

func seed(t *testing.T, db *DB) fixture {
	t.Helper()
	ctx := context.Background()

	owner := uuid.New()
	biz := &models.Business{OwnerID: owner, Name: "Cut & Go", Status: models.BusinessActive}
	require.NoError(t, db.CreateBusiness(ctx, biz))

	svc := &models.Service{BusinessID: biz.ID, Name: "Haircut", DurationMins: 60, Active: true}
	require.NoError(t, db.CreateService(ctx, svc))

	entries := make([]models.WorkingHours, 7)
	for d := 0; d < 7; d++ {
		entries[d] = models.WorkingHours{
			DayOfWeek: d,
			OpenTime:  todPtr("09:00"),
			CloseTime: todPtr("18:00"),
		}
	}
	entries[0].Closed = true
	entries[0].OpenTime = nil
	entries[0].CloseTime = nil
	require.NoError(t, db.ReplaceWorkingHours(ctx, biz.ID, entries))

	return fixture{business: biz, service: svc, owner: owner}
}

func newBooking(f fixture, date time.Time, start, end string) *models.Booking {
	return &models.Booking{
		BusinessID: f.business.ID,
		ServiceID:  f.service.ID,
		GuestName:  "Ada",
		GuestPhone: "+15550001111",
		Date:       date,
		StartTime:  tod(start),
		EndTime:    tod(end),
		Status:     models.StatusPending,
		BookedAt:   time.Now().UTC(),
	}
}

func TestCreateBooking_Conflicts(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday

	require.NoError(t, db.CreateBooking(ctx, newBooking(f, date, "10:00", "11:00")))

	t.Run("overlapping slot fails", func(t *testing.T) {
		err := db.CreateBooking(ctx, newBooking(f, date, "10:30", "11:30"))
		require.Error(t, err)
		assert.Equal(t, apperror.KindSlotUnavailable, apperror.KindOf(err))
	})

	t.Run("adjacent slot succeeds", func(t *testing.T) {
		assert.NoError(t, db.CreateBooking(ctx, newBooking(f, date, "11:00", "12:00")))
	})

	t.Run("same slot on another date succeeds", func(t *testing.T) {
		other := date.AddDate(0, 0, 1)
		assert.NoError(t, db.CreateBooking(ctx, newBooking(f, other, "10:00", "11:00")))
	})

	t.Run("terminal booking frees the slot", func(t *testing.T) {
		b := newBooking(f, date, "14:00", "15:00")
		require.NoError(t, db.CreateBooking(ctx, b))

		eff, err := models.Transition(models.StatusPending, models.ActionReject, time.Now(), "no capacity")
		require.NoError(t, err)
		require.NoError(t, db.ApplyTransition(ctx, b.ID, models.StatusPending, eff))

		assert.NoError(t, db.CreateBooking(ctx, newBooking(f, date, "14:00", "15:00")))
	})
}

// Two concurrent creates for the identical slot: exactly one commits.
func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	date := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.CreateBooking(context.Background(), newBooking(f, date, "10:00", "11:00"))
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperror.IsKind(err, apperror.KindSlotUnavailable):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one create must succeed")
	assert.Equal(t, attempts-1, conflict)

	existing, err := db.FindNonTerminalBookings(context.Background(), f.business.ID, date)
	require.NoError(t, err)
	assert.Len(t, existing, 1)
}

func TestApplyTransition_StaleStatus(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()
	date := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	b := newBooking(f, date, "09:00", "10:00")
	require.NoError(t, db.CreateBooking(ctx, b))

	now := time.Now().UTC()
	eff, err := models.Transition(models.StatusPending, models.ActionApprove, now, "")
	require.NoError(t, err)
	require.NoError(t, db.ApplyTransition(ctx, b.ID, models.StatusPending, eff))

	// Second apply from the stale PENDING snapshot must fail.
	err = db.ApplyTransition(ctx, b.ID, models.StatusPending, eff)
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.ConfirmedAt)
	assert.WithinDuration(t, now, *got.ConfirmedAt, time.Second)
}

func TestGetBookingForOwner(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	b := newBooking(f, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), "09:00", "10:00")
	require.NoError(t, db.CreateBooking(ctx, b))

	got, err := db.GetBookingForOwner(ctx, b.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = db.GetBookingForOwner(ctx, b.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestReplaceWorkingHours(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	t.Run("reads back entries", func(t *testing.T) {
		monday, err := db.GetWorkingHours(ctx, f.business.ID, 1)
		require.NoError(t, err)
		require.NotNil(t, monday)
		assert.True(t, monday.IsOpen())
		assert.Equal(t, "09:00", monday.OpenTime.String())

		sunday, err := db.GetWorkingHours(ctx, f.business.ID, 0)
		require.NoError(t, err)
		require.NotNil(t, sunday)
		assert.False(t, sunday.IsOpen())
	})

	t.Run("missing business has no entries", func(t *testing.T) {
		wh, err := db.GetWorkingHours(ctx, uuid.New(), 1)
		require.NoError(t, err)
		assert.Nil(t, wh)
	})

	t.Run("rejects wrong count", func(t *testing.T) {
		err := db.ReplaceWorkingHours(ctx, f.business.ID, make([]models.WorkingHours, 5))
		assert.Error(t, err)
	})

	t.Run("invalid entry leaves old schedule intact", func(t *testing.T) {
		entries := make([]models.WorkingHours, 7)
		for d := 0; d < 7; d++ {
			entries[d] = models.WorkingHours{DayOfWeek: d, Closed: true}
		}
		entries[3] = models.WorkingHours{DayOfWeek: 3, OpenTime: todPtr("18:00"), CloseTime: todPtr("09:00")}

		err := db.ReplaceWorkingHours(ctx, f.business.ID, entries)
		require.Error(t, err)

		monday, err := db.GetWorkingHours(ctx, f.business.ID, 1)
		require.NoError(t, err)
		require.NotNil(t, monday)
		assert.True(t, monday.IsOpen(), "previous schedule must survive a failed replace")
	})
}

func TestListBookings(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	ctx := context.Background()

	customer := uuid.New()
	date := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	b1 := newBooking(f, date, "09:00", "10:00")
	b1.CustomerID = &customer
	b1.GuestName, b1.GuestPhone = "", ""
	require.NoError(t, db.CreateBooking(ctx, b1))
	require.NoError(t, db.CreateBooking(ctx, newBooking(f, date, "10:00", "11:00")))
	require.NoError(t, db.CreateBooking(ctx, newBooking(f, date.AddDate(0, 0, 1), "09:00", "10:00")))

	t.Run("owner list by date", func(t *testing.T) {
		got, err := db.ListOwnerBookings(ctx, f.business.ID, OwnerBookingFilter{Date: &date})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("owner list by status", func(t *testing.T) {
		pending := models.StatusPending
		got, err := db.ListOwnerBookings(ctx, f.business.ID, OwnerBookingFilter{Status: &pending})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("customer list", func(t *testing.T) {
		got, err := db.ListCustomerBookings(ctx, customer)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].CustomerID)
		assert.Equal(t, customer, *got[0].CustomerID)
		assert.False(t, got[0].IsGuest())
	})

	t.Run("range for export", func(t *testing.T) {
		got, err := db.ListBookingsInRange(ctx, f.business.ID, date, date.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}
