package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// StoredTrace is a W3C trace context kept alongside a persisted row (the outbox)
// so work done later can join the trace of the request that wrote it.
type StoredTrace struct {
	Parent string
	State  string
}

func CaptureTrace(ctx context.Context) StoredTrace {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return StoredTrace{Parent: carrier.Get("traceparent"), State: carrier.Get("tracestate")}
}

func (st StoredTrace) IsZero() bool {
	return st.Parent == ""
}

// Restore returns ctx carrying the stored span as its remote parent.
func (st StoredTrace) Restore(ctx context.Context) context.Context {
	if st.IsZero() {
		return ctx
	}
	carrier := propagation.MapCarrier{"traceparent": st.Parent}
	if st.State != "" {
		carrier["tracestate"] = st.State
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
