package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tammy-rb/siri-cosmetics-server/libs/kafkax"
)

func TestNewEventMarshalsPayload(t *testing.T) {
	dow := 1
	evt, err := NewEvent("schedule", "weekly:1", TopicScheduleChanged, ScheduleChanged{Kind: "weekly", Action: "upserted", DayOfWeek: &dow})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	var got ScheduleChanged
	if err := json.Unmarshal(evt.Payload, &got); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if got.Kind != "weekly" || got.DayOfWeek == nil || *got.DayOfWeek != 1 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestRecordMessageCarriesMeta(t *testing.T) {
	rec := Record{
		EventID:     "evt-1",
		AggregateID: "appt-1",
		EventType:   TopicAppointmentBooked,
		Payload:     []byte(`{}`),
		Traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	}
	msg := rec.Message(context.Background())
	if msg.Topic != TopicAppointmentBooked || string(msg.Key) != "appt-1" {
		t.Fatalf("unexpected message routing: topic=%s key=%s", msg.Topic, msg.Key)
	}
	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventID != "evt-1" || meta.EventType != TopicAppointmentBooked {
		t.Fatalf("unexpected meta %+v", meta)
	}
}
