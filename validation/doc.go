// Package validation provides an issue-collecting validator for cross-model
// checks and a struct validator for tag-declared field rules.
package validation
