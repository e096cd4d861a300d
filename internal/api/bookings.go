package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"findly/internal/booking"
	"findly/internal/database"
	"findly/internal/metrics"
	"findly/internal/models"
)

// CreateBookingRequest is the request body for POST /api/bookings and
// POST /api/bookings/guest.
type CreateBookingRequest struct {
	BusinessID string `json:"business_id"`
	ServiceID  string `json:"service_id"`
	Date       string `json:"date"`       // YYYY-MM-DD
	StartTime  string `json:"start_time"` // HH:MM
	GuestName  string `json:"guest_name,omitempty"`
	GuestPhone string `json:"guest_phone,omitempty"`
	GuestEmail string `json:"guest_email,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// BookingResponse is the wire form of a booking.
type BookingResponse struct {
	ID              string `json:"id"`
	BusinessID      string `json:"business_id"`
	ServiceID       string `json:"service_id"`
	CustomerID      string `json:"customer_id,omitempty"`
	GuestName       string `json:"guest_name,omitempty"`
	GuestPhone      string `json:"guest_phone,omitempty"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	BookedAt        string `json:"booked_at"`
}

func toBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID.String(),
		BusinessID:      b.BusinessID.String(),
		ServiceID:       b.ServiceID.String(),
		GuestName:       b.GuestName,
		GuestPhone:      b.GuestPhone,
		Date:            b.Date.Format(database.DateFormat),
		StartTime:       b.StartTime.String(),
		EndTime:         b.EndTime.String(),
		Status:          string(b.Status),
		Notes:           b.Notes,
		RejectionReason: b.RejectionReason,
		BookedAt:        b.BookedAt.Format(time.RFC3339),
	}
	if b.CustomerID != nil {
		resp.CustomerID = b.CustomerID.String()
	}
	return resp
}

func toBookingResponses(bs []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bs))
	for i := range bs {
		out = append(out, toBookingResponse(&bs[i]))
	}
	return out
}

func decodeCreateRequest(r *http.Request) (booking.CreateInput, error) {
	var req CreateBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return booking.CreateInput{}, errBadRequest("invalid JSON body")
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		return booking.CreateInput{}, errBadRequest("invalid business_id")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return booking.CreateInput{}, errBadRequest("invalid service_id")
	}
	date, err := time.Parse(database.DateFormat, req.Date)
	if err != nil {
		return booking.CreateInput{}, errBadRequest("invalid date format; expected YYYY-MM-DD")
	}
	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return booking.CreateInput{}, errBadRequest("invalid start_time format; expected HH:MM")
	}

	return booking.CreateInput{
		BusinessID: businessID,
		ServiceID:  serviceID,
		Date:       date,
		StartTime:  start,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
		Notes:      req.Notes,
	}, nil
}

// handleCreateBooking books a slot for an authenticated customer.
// POST /api/bookings
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_booking")

	cid, err := customerID(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	in, err := decodeCreateRequest(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	in.CustomerID = &cid
	// Customer identity comes from the header; guest fields are rejected.
	in.GuestName, in.GuestPhone, in.GuestEmail = "", "", ""

	b, err := s.bookings.Create(r.Context(), in)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

// handleCreateGuestBooking books a slot for a walk-in without an account.
// POST /api/bookings/guest
func (s *HTTPServer) handleCreateGuestBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_guest_booking")

	in, err := decodeCreateRequest(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	b, err := s.bookings.Create(r.Context(), in)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

// handleListCustomerBookings lists the caller's bookings.
// GET /api/bookings
func (s *HTTPServer) handleListCustomerBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("list_customer_bookings")

	cid, err := customerID(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	bookings, err := s.bookings.ListCustomerBookings(r.Context(), cid)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": toBookingResponses(bookings)})
}

// handleGetCustomerBooking returns one of the caller's bookings.
// GET /api/bookings/{id}
func (s *HTTPServer) handleGetCustomerBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("get_customer_booking")

	cid, err := customerID(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	bookingID, err := pathUUID(r, "id")
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	b, err := s.bookings.GetCustomerBooking(r.Context(), cid, bookingID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

// handleCancelBooking withdraws one of the caller's bookings.
// POST /api/bookings/{id}/cancel
func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("cancel_booking")

	cid, err := customerID(r)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	bookingID, err := pathUUID(r, "id")
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	b, err := s.bookings.Cancel(r.Context(), cid, bookingID)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}
