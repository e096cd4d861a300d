package reminders

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"findly/internal/clock"
	"findly/internal/events"
	"findly/internal/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListApprovedForDate(ctx context.Context, date time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func TestRunNow_PublishesTomorrowsApprovedBookings(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	bookings := []models.Booking{
		{
			ID:         uuid.New(),
			BusinessID: uuid.New(),
			Date:       tomorrow,
			StartTime:  models.MustTimeOfDay("10:00"),
			EndTime:    models.MustTimeOfDay("11:00"),
			Status:     models.StatusApproved,
		},
		{
			ID:         uuid.New(),
			BusinessID: uuid.New(),
			Date:       tomorrow,
			StartTime:  models.MustTimeOfDay("14:00"),
			EndTime:    models.MustTimeOfDay("15:00"),
			Status:     models.StatusApproved,
		},
	}

	store := new(mockStore)
	store.On("ListApprovedForDate", mock.Anything, tomorrow).Return(bookings, nil)

	bus := events.NewBus()
	var got []events.NotificationPayload
	bus.Subscribe(events.TypeBookingReminder, func(e events.Event) error {
		var p events.NotificationPayload
		require.NoError(t, json.Unmarshal(e.Payload, &p))
		got = append(got, p)
		return nil
	})

	logger := zerolog.Nop()
	s := NewScheduler(DefaultConfig(), store, bus, clock.Fixed{T: now}, &logger)
	s.RunNow(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, bookings[0].ID.String(), got[0].BookingID)
	assert.Equal(t, "10:00", got[0].StartTime)
	assert.Equal(t, "2026-03-02", got[0].Date)
	store.AssertExpectations(t)
}

func TestRunNow_NoBookings(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	store := new(mockStore)
	store.On("ListApprovedForDate", mock.Anything, mock.Anything).Return([]models.Booking{}, nil)

	bus := events.NewBus()
	published := 0
	bus.Subscribe(events.TypeBookingReminder, func(events.Event) error {
		published++
		return nil
	})

	logger := zerolog.Nop()
	s := NewScheduler(DefaultConfig(), store, bus, clock.Fixed{T: now}, &logger)
	s.RunNow(context.Background())
	assert.Zero(t, published)
}

func TestStartStop(t *testing.T) {
	store := new(mockStore)
	bus := events.NewBus()
	logger := zerolog.Nop()

	cfg := Config{DailyHour: 3, CheckInterval: 10 * time.Millisecond}
	s := NewScheduler(cfg, store, bus, clock.System{}, &logger)

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, s.IsRunning, time.Second, 5*time.Millisecond)
	s.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.False(t, s.IsRunning())
}
