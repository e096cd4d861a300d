// Package api exposes the scheduling engine over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"findly/internal/apperror"
	"findly/internal/availability"
	"findly/internal/booking"
	"findly/internal/database"
	"findly/internal/export"
)

// HTTPServer wires the service layer to HTTP handlers.
type HTTPServer struct {
	bookings     *booking.Service
	availability *availability.Service
	exporter     *export.Exporter
	db           *database.DB
	log          zerolog.Logger
}

// New creates the HTTP server. exporter may be nil to disable exports.
func New(bookings *booking.Service, av *availability.Service, exporter *export.Exporter, db *database.DB, log zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		bookings:     bookings,
		availability: av,
		exporter:     exporter,
		db:           db,
		log:          log,
	}
}

// Handler builds the route table.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/businesses/{id}/slots", s.handleSlots)

	mux.HandleFunc("POST /api/bookings", s.handleCreateBooking)
	mux.HandleFunc("POST /api/bookings/guest", s.handleCreateGuestBooking)
	mux.HandleFunc("GET /api/bookings", s.handleListCustomerBookings)
	mux.HandleFunc("GET /api/bookings/{id}", s.handleGetCustomerBooking)
	mux.HandleFunc("POST /api/bookings/{id}/cancel", s.handleCancelBooking)

	mux.HandleFunc("GET /api/owner/bookings", s.handleListOwnerBookings)
	mux.HandleFunc("POST /api/owner/bookings/{id}/approve", s.handleApprove)
	mux.HandleFunc("POST /api/owner/bookings/{id}/reject", s.handleReject)
	mux.HandleFunc("POST /api/owner/bookings/{id}/complete", s.handleComplete)
	mux.HandleFunc("POST /api/owner/bookings/{id}/no-show", s.handleNoShow)
	mux.HandleFunc("PUT /api/owner/businesses/{id}/hours", s.handleReplaceHours)
	mux.HandleFunc("GET /api/owner/businesses/{id}/export", s.handleExport)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// errorBody is the wire form of an application error.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *HTTPServer) writeAppError(w http.ResponseWriter, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(err)
	msg := err.Error()
	if kind == apperror.KindInternal {
		s.log.Error().Err(err).Msg("internal error")
		msg = "internal error"
	}
	writeJSON(w, status, map[string]any{"error": errorBody{Code: string(kind), Message: msg}})
}

// headerUUID reads a required identity header. Identity is established
// upstream; these headers carry the already-authenticated principal.
func headerUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.Header.Get(name)
	if raw == "" {
		return uuid.Nil, apperror.Newf(apperror.KindForbidden, "%s header is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Newf(apperror.KindForbidden, "%s is not a valid UUID", name)
	}
	return id, nil
}

func customerID(r *http.Request) (uuid.UUID, error) { return headerUUID(r, "X-Customer-ID") }
func ownerID(r *http.Request) (uuid.UUID, error)    { return headerUUID(r, "X-Owner-ID") }

func errBadRequest(msg string) error {
	return apperror.New(apperror.KindValidation, msg)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperror.Newf(apperror.KindValidation, "invalid %s in path", name)
	}
	return id, nil
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
