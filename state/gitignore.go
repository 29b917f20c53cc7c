package state

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/dft/errors"
)

const gitignoreEntry = ".dft/"

// EnsureGitignore reconciles the state-directory entry in the project's
// .gitignore with the ignore option. When ignore is true the entry is
// appended if absent; when false it is removed. Returns true when the file
// was changed.
func EnsureGitignore(projectDir string, ignore bool) (bool, error) {
	path := filepath.Join(projectDir, ".gitignore")

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.State("", "read .gitignore").WithCause(err)
	}

	lines := []string{}
	if len(data) > 0 {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}

	present := false
	for _, l := range lines {
		if strings.TrimSpace(l) == gitignoreEntry {
			present = true
			break
		}
	}

	switch {
	case ignore && !present:
		lines = append(lines, gitignoreEntry)
	case !ignore && present:
		kept := lines[:0]
		for _, l := range lines {
			if strings.TrimSpace(l) != gitignoreEntry {
				kept = append(kept, l)
			}
		}
		lines = kept
	default:
		return false, nil
	}

	out := strings.Join(lines, "\n")
	if out != "" {
		out += "\n"
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return false, errors.State("", "write .gitignore").WithCause(err)
	}
	return true, nil
}
