// Package export renders a business's bookings as an xlsx workbook.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"findly/internal/database"
	"findly/internal/models"
)

// Store is the storage surface the exporter needs.
type Store interface {
	GetBusinessForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Business, error)
	ListBookingsInRange(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]models.Booking, error)
	GetServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// Exporter writes booking reports.
type Exporter struct {
	store  Store
	logger *zerolog.Logger
}

func New(store Store, logger *zerolog.Logger) *Exporter {
	return &Exporter{store: store, logger: logger}
}

var bookingHeader = []string{
	"Booking ID", "Date", "Start", "End", "Status",
	"Service", "Customer", "Phone", "Notes", "Rejection Reason", "Booked At",
}

// Filename returns the suggested attachment name for a range export.
func Filename(businessName string, from, to time.Time) string {
	return fmt.Sprintf("bookings_%s_%s_%s.xlsx",
		sanitize(businessName), from.Format(database.DateFormat), to.Format(database.DateFormat))
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// WriteBookings writes the owner's bookings for [from, to] to w as an xlsx
// workbook with a single "Bookings" sheet.
func (e *Exporter) WriteBookings(ctx context.Context, w io.Writer, ownerID, businessID uuid.UUID, from, to time.Time) error {
	if _, err := e.store.GetBusinessForOwner(ctx, businessID, ownerID); err != nil {
		return err
	}
	bookings, err := e.store.ListBookingsInRange(ctx, businessID, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	f.SetSheetName("Sheet1", sheet)

	if err := e.writeHeader(f, sheet); err != nil {
		return err
	}

	serviceNames := make(map[uuid.UUID]string)
	for i, b := range bookings {
		row := i + 2
		name, ok := serviceNames[b.ServiceID]
		if !ok {
			if svc, err := e.store.GetServiceByID(ctx, b.ServiceID); err == nil {
				name = svc.Name
			}
			serviceNames[b.ServiceID] = name
		}
		if err := e.writeBooking(f, sheet, row, b, name); err != nil {
			return err
		}
	}

	e.logger.Info().
		Str("business_id", businessID.String()).
		Int("rows", len(bookings)).
		Str("from", from.Format(database.DateFormat)).
		Str("to", to.Format(database.DateFormat)).
		Msg("export written")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (e *Exporter) writeHeader(f *excelize.File, sheet string) error {
	for i, col := range bookingHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		end, _ := excelize.CoordinatesToCellName(len(bookingHeader), 1)
		_ = f.SetCellStyle(sheet, "A1", end, style)
	}
	return nil
}

func (e *Exporter) writeBooking(f *excelize.File, sheet string, row int, b models.Booking, serviceName string) error {
	customer := b.GuestName
	phone := b.GuestPhone
	if b.CustomerID != nil {
		customer = b.CustomerID.String()
		phone = ""
	}
	values := []any{
		b.ID.String(),
		b.Date.Format(database.DateFormat),
		b.StartTime.String(),
		b.EndTime.String(),
		string(b.Status),
		serviceName,
		customer,
		phone,
		b.Notes,
		b.RejectionReason,
		b.BookedAt.Format(time.RFC3339),
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
