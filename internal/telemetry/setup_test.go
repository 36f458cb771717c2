package telemetry

import (
	"context"
	"testing"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("RETOLD_OTEL_ENDPOINT", "")
	t.Setenv("RETOLD_OTEL_ENABLED", "true")

	shutdown, err := Setup(context.Background(), "retold-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("RETOLD_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("RETOLD_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "retold-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}

func TestSettingsActive(t *testing.T) {
	tests := []struct {
		settings Settings
		want     bool
	}{
		{Settings{Endpoint: "", Enabled: true}, false},
		{Settings{Endpoint: "http://collector:4318", Enabled: false}, false},
		{Settings{Endpoint: "http://collector:4318", Enabled: true}, true},
	}
	for _, tt := range tests {
		if got := tt.settings.Active(); got != tt.want {
			t.Errorf("%+v.Active() = %v, want %v", tt.settings, got, tt.want)
		}
	}
}

func TestSetup_RejectsMalformedFlag(t *testing.T) {
	t.Setenv("RETOLD_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("RETOLD_OTEL_ENABLED", "maybe")

	if _, err := Setup(context.Background(), "retold-test"); err == nil {
		t.Error("expected an error for a non-boolean RETOLD_OTEL_ENABLED")
	}
}
