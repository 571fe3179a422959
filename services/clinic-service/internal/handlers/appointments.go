package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/booking"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/scheduling"
)

type AppointmentHandler struct {
	svc    *booking.Service
	sched  *scheduling.Scheduler
	logger *slog.Logger
}

func NewAppointmentHandler(svc *booking.Service, sched *scheduling.Scheduler, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, sched: sched, logger: logger}
}

type appointmentItem struct {
	ID                string `json:"id"`
	UserID            string `json:"userId"`
	AppointmentTypeID string `json:"appointmentTypeId"`
	Date              string `json:"date"`
	EndTime           string `json:"endTime"`
	DurationMinutes   int    `json:"durationMinutes"`
	Status            string `json:"status"`
	Notes             string `json:"notes,omitempty"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

func toAppointment(a model.Appointment) appointmentItem {
	return appointmentItem{
		ID:                a.ID,
		UserID:            a.UserID,
		AppointmentTypeID: a.AppointmentTypeID,
		Date:              a.Start.UTC().Format(time.RFC3339),
		EndTime:           a.End().UTC().Format(time.RFC3339),
		DurationMinutes:   a.DurationMinutes,
		Status:            a.Status,
		Notes:             a.Notes,
		CreatedAt:         a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toAppointments(appts []model.Appointment) []appointmentItem {
	out := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointment(a))
	}
	return out
}

// Collection serves list (GET), book (POST), update (PUT ?id=) and delete (DELETE ?id=).
func (h *AppointmentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.book(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		id, err := queryID(r)
		if err == nil {
			err = h.svc.Delete(r.Context(), id)
		}
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := h.sched.Location()
	from, err := parseInstant(q.Get("startDate"), "startDate", loc)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	to, err := parseInstant(q.Get("endDate"), "endDate", loc)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	appts, err := h.svc.List(r.Context(), booking.ListFilter{
		UserID: strings.TrimSpace(q.Get("userId")),
		Status: strings.TrimSpace(q.Get("status")),
		TypeID: strings.TrimSpace(q.Get("appointmentTypeId")),
		From:   from,
		To:     to,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointments(appts))
}

func (h *AppointmentHandler) book(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID            string `json:"userId"`
		AppointmentTypeID string `json:"appointmentTypeId"`
		Date              string `json:"date"`
		Status            string `json:"status"`
		Notes             string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var start time.Time
	if strings.TrimSpace(req.Date) != "" {
		var err error
		start, err = time.Parse(time.RFC3339, strings.TrimSpace(req.Date))
		if err != nil {
			writeError(w, r, h.logger, model.Invalid("date", "must be RFC3339"))
			return
		}
	}
	appt, err := h.svc.Book(r.Context(), booking.BookRequest{
		UserID:            req.UserID,
		AppointmentTypeID: req.AppointmentTypeID,
		Start:             start,
		Status:            strings.TrimSpace(req.Status),
		Notes:             req.Notes,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointment(appt))
}

func (h *AppointmentHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req struct {
		Date              *string `json:"date"`
		AppointmentTypeID *string `json:"appointmentTypeId"`
		Status            *string `json:"status"`
		Notes             *string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	patch := booking.UpdateRequest{
		AppointmentTypeID: req.AppointmentTypeID,
		Status:            req.Status,
		Notes:             req.Notes,
	}
	if req.Date != nil {
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.Date))
		if err != nil {
			writeError(w, r, h.logger, model.Invalid("date", "must be RFC3339"))
			return
		}
		patch.Start = &start
	}
	appt, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointment(appt))
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id, err := queryID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	appt, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointment(appt))
}

func (h *AppointmentHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	date, err := parseDateParam(r.URL.Query().Get("date"), "date")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	appts, err := h.svc.ListByDate(r.Context(), date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointments(appts))
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	id, err := queryID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	appt, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointment(appt))
}

// FullyBooked answers for a single ?date= or for a whole ?month=&year=.
func (h *AppointmentHandler) FullyBooked(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := parseDateParam(raw, "date")
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		full, err := h.sched.IsFullyBooked(r.Context(), date)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"date": raw, "fullyBooked": full})
		return
	}
	month, year, err := monthParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	days, err := h.sched.FullyBookedDaysInMonth(r.Context(), month, year)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if days == nil {
		days = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": int(month),
		"year":  year,
		"days":  days,
	})
}
