package outbox

import (
	"encoding/json"
	"fmt"
)

const (
	TopicScheduleChanged      = "clinic.schedule.changed.v1"
	TopicAppointmentBooked    = "clinic.appointment.booked.v1"
	TopicAppointmentUpdated   = "clinic.appointment.updated.v1"
	TopicAppointmentCancelled = "clinic.appointment.cancelled.v1"
	TopicAppointmentDeleted   = "clinic.appointment.deleted.v1"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (production-style: event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// NewEvent marshals payload as JSON.
func NewEvent(aggregateType, aggregateID, eventType string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       body,
	}, nil
}

// ScheduleChanged is the payload of clinic.schedule.changed.v1.
type ScheduleChanged struct {
	Kind      string `json:"kind"`
	Action    string `json:"action"`
	DayOfWeek *int   `json:"day_of_week,omitempty"`
	Date      string `json:"date,omitempty"`
}
