package otelx

import "testing"

func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	prev := lookupEnv
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	t.Cleanup(func() { lookupEnv = prev })
}

func TestConfigFromEnvDisabledWithoutEndpoint(t *testing.T) {
	withEnv(t, map[string]string{})
	cfg := ConfigFromEnv("clinic-service")
	if cfg.Enabled {
		t.Fatal("expected tracing disabled without an endpoint")
	}
	if cfg.SampleRatio != 1 {
		t.Fatalf("expected default sample ratio 1, got %v", cfg.SampleRatio)
	}
}

func TestConfigFromEnvEndpointAndRatio(t *testing.T) {
	withEnv(t, map[string]string{
		"OTEL_EXPORTER_OTLP_ENDPOINT": "collector:4317",
		"OTEL_SAMPLING_RATIO":         "0.25",
	})
	cfg := ConfigFromEnv("clinic-service")
	if !cfg.Enabled || cfg.OTLPEndpoint != "collector:4317" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SampleRatio != 0.25 {
		t.Fatalf("expected 0.25, got %v", cfg.SampleRatio)
	}

	withEnv(t, map[string]string{
		"OTEL_EXPORTER_OTLP_ENDPOINT": "collector:4317",
		"OTEL_ENABLED":                "false",
	})
	if ConfigFromEnv("clinic-service").Enabled {
		t.Fatal("OTEL_ENABLED=false should win")
	}
}
