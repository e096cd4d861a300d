package events

import (
	"github.com/rs/zerolog"
)

// NotificationPayload is what booking events carry to subscribers.
type NotificationPayload struct {
	BookingID  string `json:"booking_id"`
	BusinessID string `json:"business_id"`
	Status     string `json:"status"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
}

// LogNotifier is a stand-in for real notification delivery: it records every
// booking event it receives. Delivery channels (email, SMS, push) plug in as
// additional subscribers later.
type LogNotifier struct {
	logger *zerolog.Logger
}

// NewLogNotifier creates a notifier writing to the given logger.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SubscribeAll registers the notifier for every booking event type.
func (n *LogNotifier) SubscribeAll(bus *Bus) {
	for _, t := range []string{
		TypeBookingCreated,
		TypeBookingApproved,
		TypeBookingRejected,
		TypeBookingCancelled,
		TypeBookingCompleted,
		TypeBookingNoShow,
		TypeBookingReminder,
	} {
		bus.Subscribe(t, n.Handle)
	}
}

// Handle logs the event.
func (n *LogNotifier) Handle(event Event) error {
	n.logger.Info().
		Str("event", event.Type).
		RawJSON("payload", event.Payload).
		Msg("booking notification")
	return nil
}
