package model

import "time"

// TimeSlot is a wall-clock range in the clinic time zone, "HH:MM" 24-hour.
type TimeSlot struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WeeklyScheduleEntry holds the recurring hours for one weekday (0 = Sunday).
// An empty slot list means the clinic is closed that weekday.
type WeeklyScheduleEntry struct {
	DayOfWeek int
	TimeSlots []TimeSlot
	UpdatedAt time.Time
}

// SpecialHours replaces the weekly hours for a single date.
type SpecialHours struct {
	ID        string
	Date      time.Time
	TimeSlots []TimeSlot
	Reason    string
	CreatedAt time.Time
}

// ClosedDay closes the clinic for a single date, whatever else is configured.
type ClosedDay struct {
	ID        string
	Date      time.Time
	Reason    string
	CreatedAt time.Time
}
