// Package runner contains the execution half of the engine: the per-
// pipeline execution strategies (full and microbatch), the step-graph
// runner that moves packets through one plan entry, and the orchestrator
// that validates, selects, orders, and runs pipelines for an invocation.
package runner
