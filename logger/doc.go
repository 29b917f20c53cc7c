// Package logger wraps zerolog with dft-specific configuration and
// structured field helpers. The CLI builds a Config from the project file's
// logging block and the command-line flags, then installs the result with
// SetGlobalLogger as the logger used by the CLI and by every engine
// component.
package logger
