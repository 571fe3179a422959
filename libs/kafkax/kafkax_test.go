package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestExtractEventMetaFallbacks(t *testing.T) {
	msg := kafka.Message{Topic: "clinic.schedule.changed.v1", Key: []byte("weekly:2")}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "weekly:2" || meta.EventType != "clinic.schedule.changed.v1" {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	msg.Headers = MetaHeaders(EventMeta{EventID: "evt-1", EventType: "custom"})
	meta = ExtractEventMeta(msg)
	if meta.EventID != "evt-1" || meta.EventType != "custom" {
		t.Fatalf("unexpected meta from headers: %+v", meta)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka:9092, ,kafka2:9092")
	if len(got) != 2 || got[1] != "kafka2:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
}

func TestTraceHeadersRoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := InjectTraceHeaders(ctx, MetaHeaders(EventMeta{EventID: "e", EventType: "t"}))
	if HeaderValue(headers, "traceparent") == "" {
		t.Fatal("expected traceparent header to be appended")
	}

	out := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), kafka.Message{Headers: headers}))
	if out.TraceID() != traceID {
		t.Fatalf("expected trace id %s, got %s", traceID, out.TraceID())
	}
}
