package errors

import (
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := Selector("unknown pipeline \"orders\"")
	want := `SELECTOR_ERROR: unknown pipeline "orders"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAppError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := State("orders", "write failed").WithCause(cause)
	if got := err.Error(); got != `STATE_ERROR: state for pipeline "orders": write failed (cause: connection refused)` {
		t.Errorf("unexpected Error(): %q", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Component("orders", "extract", cause)
	if !Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_ExitCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Project("missing dft_project.yml"), ExitValidation},
		{PipelineParse("a.yml", "bad shape"), ExitValidation},
		{DuplicatePipeline("a", "a.yml", "b.yml"), ExitValidation},
		{Dependency("unknown connection"), ExitValidation},
		{Cycle([]string{"a", "b"}), ExitValidation},
		{Selector("malformed"), ExitSelector},
		{Component("p", "s", fmt.Errorf("x")), ExitRunFailed},
		{State("p", "x"), ExitRunFailed},
	}
	for _, tt := range tests {
		if got := tt.err.ExitCode(); got != tt.want {
			t.Errorf("%s: ExitCode() = %d, want %d", tt.err.Code, got, tt.want)
		}
	}
}

func TestCycle_SortsParticipants(t *testing.T) {
	err := Cycle([]string{"c", "a", "b"})
	want := "CYCLE_DETECTED: dependency cycle involving: a, b, c"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Selector("bad"))
	code, ok := CodeOf(wrapped)
	if !ok || code != ErrCodeSelector {
		t.Errorf("CodeOf() = %v, %v; want SELECTOR_ERROR, true", code, ok)
	}

	if _, ok := CodeOf(fmt.Errorf("plain")); ok {
		t.Error("expected no code for a plain error")
	}
}

func TestComponent_CarriesContext(t *testing.T) {
	err := Component("orders", "load", fmt.Errorf("duplicate key"))
	if err.Details["pipeline"] != "orders" || err.Details["step"] != "load" {
		t.Errorf("missing pipeline/step details: %v", err.Details)
	}
}
