// Package state persists per-pipeline key/value state under a project's
// .dft/state/ directory, one JSON file per pipeline. Saves are atomic: the
// new contents are written to a temp file in the same directory and renamed
// over the old file, so a failed write leaves the previous state intact.
package state
