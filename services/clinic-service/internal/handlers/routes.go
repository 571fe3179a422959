package handlers

import "net/http"

// Register mounts every clinic route on mux.
func Register(mux *http.ServeMux, sh *ScheduleHandler, ah *AppointmentHandler, th *TypeHandler) {
	mux.HandleFunc("/api/v1/schedule/weekly", sh.Weekly)
	mux.HandleFunc("/api/v1/schedule/special-hours", sh.SpecialHours)
	mux.HandleFunc("/api/v1/schedule/closed-days", sh.ClosedDays)
	mux.HandleFunc("/api/v1/schedule/overrides", sh.Overrides)
	mux.HandleFunc("/api/v1/schedule/month", sh.Month)
	mux.HandleFunc("/api/v1/schedule/windows", sh.Windows)
	mux.HandleFunc("/api/v1/schedule/available-slots", sh.AvailableSlots)
	mux.HandleFunc("/api/v1/schedule/slot-check", sh.SlotCheck)

	mux.HandleFunc("/api/v1/appointments", ah.Collection)
	mux.HandleFunc("/api/v1/appointments/get", ah.Get)
	mux.HandleFunc("/api/v1/appointments/by-date", ah.ByDate)
	mux.HandleFunc("/api/v1/appointments/cancel", ah.Cancel)
	mux.HandleFunc("/api/v1/appointments/fully-booked", ah.FullyBooked)

	mux.HandleFunc("/api/v1/appointment-types", th.Collection)
	mux.HandleFunc("/api/v1/appointment-types/get", th.Get)
}
