package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"findly/internal/database"
	"findly/internal/export"
	"findly/internal/metrics"
	"findly/internal/models"
)

// handleListOwnerBookings lists bookings for one of the owner's businesses.
// GET /api/owner/bookings?business_id=UUID&status=PENDING&date=YYYY-MM-DD
func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_owner_bookings")

	oid, err := ownerID(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}

	var businessID *uuid.UUID
	if raw := r.URL.Query().Get("business_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid business_id")
			return
		}
		businessID = &id
	}

	var filter database.OwnerBookingFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.BookingStatus(raw)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.Parse(database.DateFormat, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}

	bookings, err := s.bookings.ListOwnerBookings(r.Context(), oid, businessID, filter)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": toBookingResponses(bookings)})
}

// RejectRequest carries the optional rejection reason.
type RejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (s *HTTPServer) handleApprove(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("approve_booking")
	s.ownerTransition(w, r, func(oid, bid uuid.UUID) (*models.Booking, error) {
		return s.bookings.Approve(r.Context(), oid, bid)
	})
}

func (s *HTTPServer) handleReject(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reject_booking")

	var req RejectRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	s.ownerTransition(w, r, func(oid, bid uuid.UUID) (*models.Booking, error) {
		return s.bookings.Reject(r.Context(), oid, bid, req.Reason)
	})
}

func (s *HTTPServer) handleComplete(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("complete_booking")
	s.ownerTransition(w, r, func(oid, bid uuid.UUID) (*models.Booking, error) {
		return s.bookings.Complete(r.Context(), oid, bid)
	})
}

func (s *HTTPServer) handleNoShow(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("no_show_booking")
	s.ownerTransition(w, r, func(oid, bid uuid.UUID) (*models.Booking, error) {
		return s.bookings.MarkNoShow(r.Context(), oid, bid)
	})
}

func (s *HTTPServer) ownerTransition(w http.ResponseWriter, r *http.Request, apply func(oid, bid uuid.UUID) (*models.Booking, error)) {
	oid, err := ownerID(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	bookingID, err := pathUUID(r, "id")
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	b, err := apply(oid, bookingID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

// HoursEntry is one weekday's schedule in PUT hours requests.
type HoursEntry struct {
	DayOfWeek  int    `json:"day_of_week"` // 0=Sunday
	Closed     bool   `json:"closed"`
	OpenTime   string `json:"open_time,omitempty"`  // HH:MM
	CloseTime  string `json:"close_time,omitempty"` // HH:MM
	BreakStart string `json:"break_start,omitempty"`
	BreakEnd   string `json:"break_end,omitempty"`
}

// ReplaceHoursRequest replaces a business's full weekly schedule.
type ReplaceHoursRequest struct {
	Hours []HoursEntry `json:"hours"`
}

// handleReplaceHours replaces the weekly schedule of one of the owner's
// businesses. All seven days must be present.
// PUT /api/owner/businesses/{id}/hours
func (s *HTTPServer) handleReplaceHours(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("replace_hours")

	oid, err := ownerID(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	businessID, err := pathUUID(r, "id")
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	if _, err := s.db.GetBusinessForOwner(r.Context(), businessID, oid); err != nil {
		s.writeAppError(w, err)
		return
	}

	var req ReplaceHoursRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entries := make([]models.WorkingHours, 0, len(req.Hours))
	for _, h := range req.Hours {
		entry, err := hoursEntryToModel(h)
		if err != nil {
			s.writeAppError(w, err)
			return
		}
		entries = append(entries, entry)
	}

	if err := s.db.ReplaceWorkingHours(r.Context(), businessID, entries); err != nil {
		s.writeAppError(w, err)
		return
	}
	// Cached future views were computed against the old schedule.
	s.availability.ScheduleChanged(r.Context(), businessID)
	writeJSON(w, http.StatusOK, map[string]any{"updated": len(entries)})
}

func hoursEntryToModel(h HoursEntry) (models.WorkingHours, error) {
	entry := models.WorkingHours{DayOfWeek: h.DayOfWeek, Closed: h.Closed}
	if h.Closed {
		return entry, nil
	}
	parse := func(raw string) (*models.TimeOfDay, error) {
		if raw == "" {
			return nil, nil
		}
		t, err := models.ParseTimeOfDay(raw)
		if err != nil {
			return nil, errBadRequest("invalid time format; expected HH:MM")
		}
		return &t, nil
	}
	var err error
	if entry.OpenTime, err = parse(h.OpenTime); err != nil {
		return entry, err
	}
	if entry.CloseTime, err = parse(h.CloseTime); err != nil {
		return entry, err
	}
	if entry.BreakStart, err = parse(h.BreakStart); err != nil {
		return entry, err
	}
	if entry.BreakEnd, err = parse(h.BreakEnd); err != nil {
		return entry, err
	}
	return entry, nil
}

// handleExport streams an xlsx report of a business's bookings.
// GET /api/owner/businesses/{id}/export?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_bookings")

	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "export is not enabled")
		return
	}

	oid, err := ownerID(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	businessID, err := pathUUID(r, "id")
	if err != nil {
		s.writeAppError(w, err)
		return
	}

	from, err := time.Parse(database.DateFormat, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse(database.DateFormat, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
		return
	}
	if from.After(to) {
		writeError(w, http.StatusBadRequest, "from must be before or equal to to")
		return
	}

	business, err := s.db.GetBusinessForOwner(r.Context(), businessID, oid)
	if err != nil {
		s.writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(business.Name, from, to)+`"`)
	if err := s.exporter.WriteBookings(r.Context(), w, oid, businessID, from, to); err != nil {
		// Headers are already out; log instead of rewriting the response.
		s.log.Error().Err(err).Str("business_id", businessID.String()).Msg("export failed")
	}
}
