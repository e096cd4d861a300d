package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func tod(s string) *TimeOfDay {
	t := MustTimeOfDay(s)
	return &t
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestBooking_OverlapsWith(t *testing.T) {
	b := func(start, end string) *Booking {
		return &Booking{StartTime: MustTimeOfDay(start), EndTime: MustTimeOfDay(end)}
	}

	tests := []struct {
		name string
		a, b *Booking
		want bool
	}{
		{"identical", b("10:00", "11:00"), b("10:00", "11:00"), true},
		{"partial overlap", b("10:00", "11:00"), b("10:30", "11:30"), true},
		{"contained", b("10:00", "12:00"), b("10:30", "11:00"), true},
		{"adjacent after", b("10:00", "11:00"), b("11:00", "12:00"), false},
		{"adjacent before", b("11:00", "12:00"), b("10:00", "11:00"), false},
		{"disjoint", b("09:00", "10:00"), b("14:00", "15:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.OverlapsWith(tt.b))
			// overlap is symmetric
			assert.Equal(t, tt.want, tt.b.OverlapsWith(tt.a))
		})
	}
}

func TestBookingStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusNoShow.Terminal())
}

func TestWorkingHours_Validate(t *testing.T) {
	tests := []struct {
		name    string
		wh      WorkingHours
		wantErr bool
	}{
		{
			name: "closed day needs nothing else",
			wh:   WorkingHours{DayOfWeek: 0, Closed: true},
		},
		{
			name: "open day with hours",
			wh:   WorkingHours{DayOfWeek: 1, OpenTime: tod("09:00"), CloseTime: tod("18:00")},
		},
		{
			name: "open day with break",
			wh: WorkingHours{DayOfWeek: 1, OpenTime: tod("09:00"), CloseTime: tod("18:00"),
				BreakStart: tod("12:00"), BreakEnd: tod("13:00")},
		},
		{
			name:    "open day missing close",
			wh:      WorkingHours{DayOfWeek: 1, OpenTime: tod("09:00")},
			wantErr: true,
		},
		{
			name:    "open after close",
			wh:      WorkingHours{DayOfWeek: 1, OpenTime: tod("18:00"), CloseTime: tod("09:00")},
			wantErr: true,
		},
		{
			name: "half a break pair",
			wh: WorkingHours{DayOfWeek: 1, OpenTime: tod("09:00"), CloseTime: tod("18:00"),
				BreakStart: tod("12:00")},
			wantErr: true,
		},
		{
			name: "break outside hours",
			wh: WorkingHours{DayOfWeek: 1, OpenTime: tod("09:00"), CloseTime: tod("18:00"),
				BreakStart: tod("08:00"), BreakEnd: tod("09:30")},
			wantErr: true,
		},
		{
			name: "inverted break",
			wh: WorkingHours{DayOfWeek: 1, OpenTime: tod("09:00"), CloseTime: tod("18:00"),
				BreakStart: tod("14:00"), BreakEnd: tod("13:00")},
			wantErr: true,
		},
		{
			name:    "bad weekday",
			wh:      WorkingHours{DayOfWeek: 7, Closed: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wh.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeekday(t *testing.T) {
	// 2026-03-01 is a Sunday
	assert.Equal(t, 0, Weekday(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, Weekday(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 6, Weekday(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)))
}
