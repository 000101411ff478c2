package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dresscutur/backend/internal/service/booking"
	"dresscutur/backend/internal/service/contacts"
)

func (s *Server) listPublicServices(w http.ResponseWriter, r *http.Request) {
	rows, err := s.catalog.ListServices(r.Context(), true)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, toServiceResponse))
}

func (s *Server) listFabrics(w http.ResponseWriter, r *http.Request) {
	rows, err := s.catalog.ListFabrics(r.Context())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, toFabricResponse))
}

func (s *Server) listTeam(w http.ResponseWriter, r *http.Request) {
	rows, err := s.catalog.ListTeam(r.Context())
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(rows, toTeamMemberResponse))
}

func (s *Server) submitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	msg, err := s.contacts.Submit(r.Context(), contacts.SubmitInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": msg.ID.String()})
}

// parseDate reads a YYYY-MM-DD query parameter as midnight in the atelier's
// location.
func (s *Server) parseDate(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, badRequestf("%s is required", name)
	}
	t, err := time.ParseInLocation(dateLayout, raw, s.booking.Location())
	if err != nil {
		return time.Time{}, badRequestf("%s must be a date formatted YYYY-MM-DD", name)
	}
	return t, nil
}

func (s *Server) busyDates(w http.ResponseWriter, r *http.Request) {
	start, err := s.parseDate(r, "start")
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	end, err := s.parseDate(r, "end")
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}

	busy, err := s.booking.BusyDates(r.Context(), start, end)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, toBusyDateResponses(busy))
}

func (s *Server) slots(w http.ResponseWriter, r *http.Request) {
	date, err := s.parseDate(r, "date")
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	slots, err := s.booking.Slots(r.Context(), date)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, slotsResponse{Date: date.Format(dateLayout), Slots: slots})
}

func (s *Server) book(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("handler", "book"))

	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, log, err)
		return
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, s.booking.Location())
	if err != nil {
		writeError(w, r, log, badRequestf("date must be formatted YYYY-MM-DD"))
		return
	}

	ev, err := s.booking.Book(r.Context(), booking.BookInput{
		ClientName:     req.Name,
		ClientEmail:    req.Email,
		ClientPhone:    req.Phone,
		Category:       req.Service,
		Notes:          req.Notes,
		Date:           date,
		Time:           req.Time,
		AllDay:         req.AllDay,
		Duration:       time.Duration(req.DurationMinutes) * time.Minute,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		log.Info("booking rejected", slog.Any("err", err), slog.String("date", req.Date), slog.String("time", req.Time))
		writeError(w, r, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(ev))
}
