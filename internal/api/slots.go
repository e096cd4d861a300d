package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"findly/internal/database"
	"findly/internal/metrics"
)

// handleSlots returns the slot grid for one business day.
// GET /api/businesses/{id}/slots?date=YYYY-MM-DD&service_id=UUID
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")

	businessID, err := pathUUID(r, "id")
	if err != nil {
		s.writeAppError(w, err)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.Parse(database.DateFormat, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	var serviceID *uuid.UUID
	if raw := r.URL.Query().Get("service_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid service_id")
			return
		}
		serviceID = &id
	}

	view, err := s.availability.GetAvailableSlots(r.Context(), businessID, date, serviceID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
