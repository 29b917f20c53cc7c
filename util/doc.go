// Package util provides small generic helpers shared across dft packages:
// map and slice operations, pointer helpers, and value coalescing.
package util
