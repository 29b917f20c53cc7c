package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbukum/dft/errors"
)

// Reserved state keys maintained by the execution strategies and the
// orchestrator.
const (
	KeyLastProcessedTimestamp = "last_processed_timestamp"
	KeyLastProcessedDate      = "last_processed_date"
	KeyLastStatus             = "last_status"
	KeyLastRunAt              = "last_run_at"
)

// Terminal status values written under KeyLastStatus.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Store reads and writes per-pipeline state files under
// <projectDir>/.dft/state/. One file per pipeline, single writer per
// pipeline within an invocation.
type Store struct {
	root string
}

// NewStore creates a store rooted at the project directory. The state
// directory is created lazily on the first save.
func NewStore(projectDir string) *Store {
	return &Store{root: filepath.Join(projectDir, ".dft", "state")}
}

// Dir returns the state directory path.
func (s *Store) Dir() string { return s.root }

func (s *Store) fileFor(pipeline string) string {
	return filepath.Join(s.root, fmt.Sprintf("pipeline_%s.json", pipeline))
}

// Load returns the pipeline's state. A missing file yields an empty map,
// not an error.
func (s *Store) Load(pipeline string) (map[string]any, error) {
	data, err := os.ReadFile(s.fileFor(pipeline))
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, errors.State(pipeline, "read failed").WithCause(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.State(pipeline, "corrupt state file").WithCause(err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// Save atomically replaces the pipeline's state file with m. The contents
// are written to a temp file in the state directory and renamed into place,
// so a failure mid-write leaves the previous file untouched.
func (s *Store) Save(pipeline string, m map[string]any) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return errors.State(pipeline, "create state directory").WithCause(err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.State(pipeline, "encode state").WithCause(err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.root, fmt.Sprintf(".pipeline_%s-*.json", pipeline))
	if err != nil {
		return errors.State(pipeline, "create temp file").WithCause(err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.State(pipeline, "write temp file").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.State(pipeline, "close temp file").WithCause(err)
	}
	if err := os.Rename(tmpName, s.fileFor(pipeline)); err != nil {
		os.Remove(tmpName)
		return errors.State(pipeline, "replace state file").WithCause(err)
	}
	return nil
}

// Update loads the pipeline's state, applies the kv entries on top, and
// saves the merged map.
func (s *Store) Update(pipeline string, kv map[string]any) error {
	m, err := s.Load(pipeline)
	if err != nil {
		return err
	}
	for k, v := range kv {
		m[k] = v
	}
	return s.Save(pipeline, m)
}

// Reader adapts one pipeline's loaded state to the template layer's
// state.get(...) lookups.
type Reader struct {
	vars map[string]any
}

// NewReader wraps an already-loaded state map.
func NewReader(vars map[string]any) *Reader { return &Reader{vars: vars} }

// Get implements template.StateReader.
func (r *Reader) Get(key string) (any, bool) {
	v, ok := r.vars[key]
	return v, ok
}
