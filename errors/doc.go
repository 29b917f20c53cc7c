// Package errors provides the structured error taxonomy used across dft.
// It implements a single error type with machine-readable codes, process
// exit-code mapping, and cause chaining compatible with errors.Is/As.
package errors
