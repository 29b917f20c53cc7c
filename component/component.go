package component

import (
	"context"
	"fmt"
	"strconv"
)

// Config is a component's rendered configuration. Connection fields, when a
// step references one, sit under the reserved "connection" sub-key.
type Config map[string]any

// ConnectionKey is the reserved sub-key holding merged connection fields.
const ConnectionKey = "connection"

// String returns the string value at key, or "" when absent.
func (c Config) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// StringOr returns the string value at key, or fallback when absent.
func (c Config) StringOr(key, fallback string) string {
	if s, ok := c[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// Int returns the integer value at key. YAML numbers may arrive as int,
// int64, float64, or a rendered string.
func (c Config) Int(key string) (int, bool) {
	switch n := c[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Bool returns the boolean value at key, or false when absent.
func (c Config) Bool(key string) bool {
	switch b := c[key].(type) {
	case bool:
		return b
	case string:
		v, _ := strconv.ParseBool(b)
		return v
	}
	return false
}

// Strings returns the string-list value at key.
func (c Config) Strings(key string) []string {
	switch v := c[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	}
	return nil
}

// Map returns the nested map at key, or nil.
func (c Config) Map(key string) map[string]any {
	m, _ := c[key].(map[string]any)
	return m
}

// Connection returns the merged connection fields, or nil when the step
// declared none.
func (c Config) Connection() map[string]any { return c.Map(ConnectionKey) }

// Vars carries the run-scoped values handed to a component alongside its
// packet: batch window bounds, the event time column, pipeline name.
type Vars map[string]any

// Well-known Vars keys set by the pipeline runner.
const (
	VarPipeline        = "pipeline"
	VarStep            = "step"
	VarBatchStart      = "batch_start"
	VarBatchEnd        = "batch_end"
	VarEventTimeColumn = "event_time_column"
)

// Source extracts one packet per invocation.
type Source interface {
	Extract(ctx context.Context, vars Vars) (*Packet, error)
	TestConnection(ctx context.Context) bool
}

// Processor transforms one packet into another.
type Processor interface {
	Process(ctx context.Context, packet *Packet, vars Vars) (*Packet, error)
}

// Endpoint loads one packet into a destination. Implementations honor the
// window-replace contract when vars carry an event time column and window
// bounds.
type Endpoint interface {
	Load(ctx context.Context, packet *Packet, vars Vars) error
}
