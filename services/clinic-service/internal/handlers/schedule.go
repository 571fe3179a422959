package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/scheduling"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

type ScheduleHandler struct {
	sched  *scheduling.Scheduler
	guard  AdminGuard
	logger *slog.Logger
}

func NewScheduleHandler(sched *scheduling.Scheduler, guard AdminGuard, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{sched: sched, guard: guard, logger: logger}
}

type weeklyEntry struct {
	DayOfWeek int              `json:"dayOfWeek"`
	TimeSlots []model.TimeSlot `json:"timeSlots"`
	UpdatedAt string           `json:"updatedAt,omitempty"`
}

type specialHoursItem struct {
	ID        string           `json:"id"`
	Date      string           `json:"date"`
	TimeSlots []model.TimeSlot `json:"timeSlots"`
	Reason    string           `json:"reason,omitempty"`
}

type closedDayItem struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

type dayItem struct {
	Date      string           `json:"date"`
	Source    string           `json:"source"`
	IsClosed  bool             `json:"isClosed"`
	TimeSlots []model.TimeSlot `json:"timeSlots"`
	Reason    string           `json:"reason,omitempty"`
}

func toWeekly(e model.WeeklyScheduleEntry) weeklyEntry {
	out := weeklyEntry{DayOfWeek: e.DayOfWeek, TimeSlots: nonNilSlots(e.TimeSlots)}
	if !e.UpdatedAt.IsZero() {
		out.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func toSpecial(sh model.SpecialHours) specialHoursItem {
	return specialHoursItem{ID: sh.ID, Date: timeofday.FormatDate(sh.Date), TimeSlots: nonNilSlots(sh.TimeSlots), Reason: sh.Reason}
}

func toClosed(cd model.ClosedDay) closedDayItem {
	return closedDayItem{ID: cd.ID, Date: timeofday.FormatDate(cd.Date), Reason: cd.Reason}
}

func toDay(d scheduling.DayConfig) dayItem {
	return dayItem{
		Date:      timeofday.FormatDate(d.Date),
		Source:    string(d.Source),
		IsClosed:  d.Closed(),
		TimeSlots: nonNilSlots(d.TimeSlots),
		Reason:    d.Reason,
	}
}

func nonNilSlots(s []model.TimeSlot) []model.TimeSlot {
	if s == nil {
		return []model.TimeSlot{}
	}
	return s
}

// Weekly serves GET (list) and PUT (upsert one weekday).
func (h *ScheduleHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := h.sched.WeeklySchedule(r.Context())
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		out := make([]weeklyEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, toWeekly(e))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPut:
		if !h.guard.allow(w, r) {
			return
		}
		var req struct {
			DayOfWeek *int              `json:"dayOfWeek"`
			TimeSlots *[]model.TimeSlot `json:"timeSlots"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		if req.DayOfWeek == nil {
			writeError(w, r, h.logger, model.Invalid("dayOfWeek", "is required"))
			return
		}
		// An explicit empty list closes the weekday; a missing one is a client error.
		if req.TimeSlots == nil {
			writeError(w, r, h.logger, model.Invalid("timeSlots", "is required"))
			return
		}
		entry, err := h.sched.SetWeeklySchedule(r.Context(), *req.DayOfWeek, *req.TimeSlots)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toWeekly(entry))
	default:
		methodNotAllowed(w)
	}
}

func (h *ScheduleHandler) SpecialHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if !h.guard.allow(w, r) {
		return
	}
	if r.Method == http.MethodDelete {
		date, err := parseDateParam(r.URL.Query().Get("date"), "date")
		if err == nil {
			err = h.sched.DeleteSpecialHours(r.Context(), date)
		}
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req struct {
		Date      string            `json:"date"`
		TimeSlots *[]model.TimeSlot `json:"timeSlots"`
		Reason    string            `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	date, err := parseDateParam(req.Date, "date")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.TimeSlots == nil {
		writeError(w, r, h.logger, model.Invalid("timeSlots", "is required"))
		return
	}
	sh, err := h.sched.AddSpecialHours(r.Context(), date, *req.TimeSlots, strings.TrimSpace(req.Reason))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSpecial(sh))
}

func (h *ScheduleHandler) ClosedDays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if !h.guard.allow(w, r) {
		return
	}
	if r.Method == http.MethodDelete {
		date, err := parseDateParam(r.URL.Query().Get("date"), "date")
		if err == nil {
			err = h.sched.DeleteClosedDay(r.Context(), date)
		}
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req struct {
		Date   string `json:"date"`
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	date, err := parseDateParam(req.Date, "date")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	cd, err := h.sched.AddClosedDay(r.Context(), date, strings.TrimSpace(req.Reason))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClosed(cd))
}

func (h *ScheduleHandler) Overrides(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	ov, err := h.sched.UpcomingOverrides(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp := struct {
		SpecialHours []specialHoursItem `json:"specialHours"`
		ClosedDays   []closedDayItem    `json:"closedDays"`
	}{
		SpecialHours: make([]specialHoursItem, 0, len(ov.SpecialHours)),
		ClosedDays:   make([]closedDayItem, 0, len(ov.ClosedDays)),
	}
	for _, sh := range ov.SpecialHours {
		resp.SpecialHours = append(resp.SpecialHours, toSpecial(sh))
	}
	for _, cd := range ov.ClosedDays {
		resp.ClosedDays = append(resp.ClosedDays, toClosed(cd))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ScheduleHandler) Month(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	month, year, err := monthParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	days, err := h.sched.MonthOverview(r.Context(), month, year)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]dayItem, 0, len(days))
	for _, d := range days {
		out = append(out, toDay(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ScheduleHandler) Windows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	date, err := parseDateParam(r.URL.Query().Get("date"), "date")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	day, err := h.sched.Day(r.Context(), date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	slots := h.sched.CandidateSlotsOf(day)
	writeJSON(w, http.StatusOK, struct {
		dayItem
		CandidateSlots []string `json:"candidateSlots"`
	}{toDay(day), nonNilStrings(slots)})
}

func (h *ScheduleHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	date, err := parseDateParam(r.URL.Query().Get("date"), "date")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	duration, err := intParam(r, "durationMinutes", h.sched.DefaultDuration())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	slots, err := h.sched.FreeSlots(r.Context(), date, duration)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":            timeofday.FormatDate(date),
		"durationMinutes": duration,
		"slots":           nonNilStrings(slots),
	})
}

func (h *ScheduleHandler) SlotCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("start"))
	start, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, r, h.logger, model.Invalid("start", "must be RFC3339"))
		return
	}
	duration, err := intParam(r, "durationMinutes", h.sched.DefaultDuration())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	ok, err := h.sched.IsSlotAvailable(r.Context(), start, duration)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start":           start.UTC().Format(time.RFC3339),
		"durationMinutes": duration,
		"available":       ok,
	})
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
