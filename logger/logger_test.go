package logger

import "testing"

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("Format = %q, want console", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("Output = %q, want stderr", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("Timestamp should default to true")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "debug", Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg = Config{Level: "loud", Format: "json"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}

	cfg = Config{Level: "info", Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestFields(t *testing.T) {
	m := Fields("pipeline", "orders", "rows", 42)
	if m["pipeline"] != "orders" {
		t.Errorf("pipeline = %v, want orders", m["pipeline"])
	}
	if m["rows"] != 42 {
		t.Errorf("rows = %v, want 42", m["rows"])
	}
}

func TestFields_OddArguments(t *testing.T) {
	m := Fields("pipeline", "orders", "dangling")
	if len(m) != 1 {
		t.Errorf("len = %d, want 1", len(m))
	}
}

func TestWithComponent(t *testing.T) {
	base := NewDefault("test")
	tagged := base.WithComponent("selector")
	if tagged == base {
		t.Error("WithComponent should return a new logger")
	}
}
