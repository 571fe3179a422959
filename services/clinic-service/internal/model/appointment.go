package model

import "time"

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCanceled  = "canceled"
	StatusCompleted = "completed"
)

// OccupyingStatuses are the statuses that hold their time range.
var OccupyingStatuses = []string{StatusScheduled, StatusConfirmed}

func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCanceled, StatusCompleted:
		return true
	}
	return false
}

func Occupies(status string) bool {
	return status == StatusScheduled || status == StatusConfirmed
}

type Appointment struct {
	ID                string
	UserID            string
	AppointmentTypeID string
	Start             time.Time
	DurationMinutes   int
	Status            string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// End is Start plus the duration persisted at booking time.
func (a Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// AppointmentFilter narrows appointment queries. Zero fields are ignored.
// From/To select appointments intersecting [From, To).
type AppointmentFilter struct {
	From      time.Time
	To        time.Time
	Statuses  []string
	UserID    string
	TypeID    string
	ExcludeID string
}

type AppointmentType struct {
	ID              string
	Name            string
	DurationMinutes int
	Price           float64
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AppointmentTypeFilter narrows type listings. Nil bounds are open.
type AppointmentTypeFilter struct {
	NameContains string
	MinPrice     *float64
	MaxPrice     *float64
	MinDuration  *int
	MaxDuration  *int
}
