// Package observability wraps the OpenTelemetry API for the engine's
// internal instrumentation: spans around pipeline and step execution and
// counters for runs, windows, and rows loaded.
//
// Only the API layer is used. Without an installed provider the calls are
// no-ops; embedders that want export wire their own SDK provider before
// invoking the orchestrator.
package observability
