package models

import (
	"time"

	"findly/internal/apperror"
)

// Action is a lifecycle transition request on a booking.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionNoShow   Action = "no_show"
)

// Effects describes what a lifecycle transition writes back to a booking.
// The persistence layer applies them; the state machine itself stays pure.
type Effects struct {
	Status          BookingStatus
	ConfirmedAt     *time.Time
	CancelledAt     *time.Time
	CompletedAt     *time.Time
	RejectionReason string
}

// lifecycle enumerates the allowed transitions:
//
//	PENDING  -> APPROVED | REJECTED | CANCELLED
//	APPROVED -> COMPLETED | NO_SHOW | CANCELLED
//
// REJECTED, CANCELLED, COMPLETED and NO_SHOW are terminal.
var lifecycle = map[Action]map[BookingStatus]bool{
	ActionApprove:  {StatusPending: true},
	ActionReject:   {StatusPending: true},
	ActionCancel:   {StatusPending: true, StatusApproved: true},
	ActionComplete: {StatusApproved: true},
	ActionNoShow:   {StatusApproved: true},
}

// Transition computes the effects of applying action to a booking in the
// given status. A disallowed transition fails with InvalidTransition rather
// than silently no-opping, so callers can detect stale-state races.
func Transition(current BookingStatus, action Action, now time.Time, reason string) (Effects, error) {
	allowed, ok := lifecycle[action]
	if !ok {
		return Effects{}, apperror.Newf(apperror.KindInvalidTransition, "unknown action %q", action)
	}
	if !allowed[current] {
		return Effects{}, apperror.Newf(apperror.KindInvalidTransition,
			"cannot %s a booking in status %s", action, current)
	}

	switch action {
	case ActionApprove:
		return Effects{Status: StatusApproved, ConfirmedAt: &now}, nil
	case ActionReject:
		return Effects{Status: StatusRejected, RejectionReason: reason}, nil
	case ActionCancel:
		return Effects{Status: StatusCancelled, CancelledAt: &now}, nil
	case ActionComplete:
		return Effects{Status: StatusCompleted, CompletedAt: &now}, nil
	case ActionNoShow:
		return Effects{Status: StatusNoShow}, nil
	}
	return Effects{}, apperror.Newf(apperror.KindInvalidTransition, "unknown action %q", action)
}
