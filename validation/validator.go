package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/dft/errors"
)

// Validator accumulates validation issues so a single pass can report every
// problem in a document instead of stopping at the first one.
type Validator struct {
	issues []string
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Addf records a formatted issue.
func (v *Validator) Addf(format string, args ...any) {
	v.issues = append(v.issues, fmt.Sprintf(format, args...))
}

// Add records the issues of another Validator.
func (v *Validator) Add(other *Validator) {
	v.issues = append(v.issues, other.issues...)
}

// HasIssues reports whether any issue was recorded.
func (v *Validator) HasIssues() bool {
	return len(v.issues) > 0
}

// Issues returns the recorded issues in insertion order.
func (v *Validator) Issues() []string {
	return v.issues
}

// Err returns nil when no issues were recorded, otherwise a project error
// joining every issue, with the full list attached under the "issues" detail.
func (v *Validator) Err() error {
	if len(v.issues) == 0 {
		return nil
	}
	return errors.Project(strings.Join(v.issues, "; ")).WithDetail("issues", v.issues)
}
