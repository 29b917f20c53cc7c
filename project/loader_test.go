package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/dft/errors"
)

const projectYAML = `project_name: analytics
state:
  ignore_in_git: true
connections:
  warehouse:
    type: postgres
    host: "{{ env_var('DB_HOST', 'localhost') }}"
    port: 5432
    database: analytics
variables:
  schema: public
logging:
  level: debug
  format: console
`

const eventsYAML = `pipeline_name: events
description: raw event ingestion
tags: [ingest, hourly]
variables:
  table: raw_events
  microbatch:
    event_time_column: event_ts
    batch_size: day
    lookback: 1
    begin: "2024-01-01T00:00:00+00:00"
steps:
  - id: extract
    type: source
    source_type: csv
    config:
      path: data/events.csv
  - id: clean
    type: processor
    processor_type: validator
    depends_on: [extract]
    config:
      drop_invalid: true
  - id: load
    type: endpoint
    endpoint_type: postgres
    connection: warehouse
    depends_on: [clean]
    config:
      table: "{{ table }}"
`

func writeProject(t *testing.T, projectFile string, pipelines map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(projectFile), 0o644); err != nil {
		t.Fatalf("write project file: %v", err)
	}
	plDir := filepath.Join(dir, PipelinesDirName)
	if err := os.MkdirAll(plDir, 0o755); err != nil {
		t.Fatalf("mkdir pipelines: %v", err)
	}
	for name, content := range pipelines {
		path := filepath.Join(plDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write pipeline: %v", err)
		}
	}
	return dir
}

func TestLoad_FullProject(t *testing.T) {
	dir := writeProject(t, projectYAML, map[string]string{"events.yml": eventsYAML})

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.ProjectName != "analytics" {
		t.Errorf("ProjectName = %q", p.ProjectName)
	}
	if !p.State.IgnoreInGit {
		t.Error("State.IgnoreInGit = false, want true")
	}
	if p.Variables["schema"] != "public" {
		t.Errorf("Variables = %v", p.Variables)
	}
	if p.Logging.Level != "debug" || p.Logging.Format != "console" {
		t.Errorf("Logging = %+v", p.Logging)
	}

	conn, ok := p.Connections["warehouse"]
	if !ok {
		t.Fatal("missing warehouse connection")
	}
	if conn.Type != "postgres" {
		t.Errorf("connection type = %q", conn.Type)
	}
	if conn.Fields["host"] != "{{ env_var('DB_HOST', 'localhost') }}" {
		t.Errorf("host captured as %v, want verbatim expression", conn.Fields["host"])
	}

	if len(p.Pipelines) != 1 {
		t.Fatalf("pipelines = %d, want 1", len(p.Pipelines))
	}
	pl := p.Pipelines[0]
	if pl.Name != "events" || !pl.HasTag("hourly") {
		t.Errorf("pipeline = %+v", pl)
	}
	if pl.Microbatch == nil {
		t.Fatal("microbatch not parsed")
	}
	if pl.Microbatch.BatchSize != "day" || pl.Microbatch.Lookback != 1 {
		t.Errorf("microbatch = %+v", pl.Microbatch)
	}
	if pl.Microbatch.EventTimeColumn != "event_ts" {
		t.Errorf("event_time_column = %q", pl.Microbatch.EventTimeColumn)
	}
	if _, leaked := pl.Variables["microbatch"]; leaked {
		t.Error("microbatch sub-record leaked into variables")
	}
	if pl.Variables["table"] != "raw_events" {
		t.Errorf("variables = %v", pl.Variables)
	}

	if len(pl.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(pl.Steps))
	}
	load := pl.Step("load")
	if load == nil || load.Kind != KindEndpoint || load.ComponentType != "postgres" {
		t.Errorf("load step = %+v", load)
	}
	if load.Connection != "warehouse" {
		t.Errorf("load connection = %q", load.Connection)
	}
	if load.Config["table"] != "{{ table }}" {
		t.Errorf("config captured as %v, want verbatim expression", load.Config["table"])
	}
}

func TestLoad_MultiDocumentFile(t *testing.T) {
	multi := `pipeline_name: first
steps:
  - id: s
    type: source
    source_type: inline
    config: {}
---
name: second
depends_on: [first]
steps:
  - id: s
    type: source
    source_type: inline
    config: {}
`
	dir := writeProject(t, projectYAML, map[string]string{"multi.yml": multi})

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Pipelines) != 2 {
		t.Fatalf("pipelines = %d, want 2", len(p.Pipelines))
	}
	if p.Pipelines[0].Name != "first" || p.Pipelines[1].Name != "second" {
		t.Errorf("names = %q, %q", p.Pipelines[0].Name, p.Pipelines[1].Name)
	}
}

func TestLoad_PipelinesSortedByName(t *testing.T) {
	mk := func(name string) string {
		return "pipeline_name: " + name + "\nsteps:\n  - id: s\n    type: source\n    source_type: inline\n    config: {}\n"
	}
	dir := writeProject(t, projectYAML, map[string]string{
		"z.yml":        mk("zeta"),
		"a.yml":        mk("alpha"),
		"nested/m.yml": mk("mid"),
	})

	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := []string{p.Pipelines[0].Name, p.Pipelines[1].Name, p.Pipelines[2].Name}
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestLoad_DuplicateName(t *testing.T) {
	mk := "pipeline_name: dup\nsteps:\n  - id: s\n    type: source\n    source_type: inline\n    config: {}\n"
	dir := writeProject(t, projectYAML, map[string]string{"a.yml": mk, "b.yml": mk})

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected duplicate error")
	}
	code, _ := errors.CodeOf(err)
	if code != errors.ErrCodeDuplicatePipeline {
		t.Errorf("code = %v, want DUPLICATE_PIPELINE", code)
	}
}

func TestLoad_MissingProjectFile(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
	code, _ := errors.CodeOf(err)
	if code != errors.ErrCodeProject {
		t.Errorf("code = %v, want PROJECT_ERROR", code)
	}
}

func TestLoad_BadStepSchema(t *testing.T) {
	bad := `pipeline_name: broken
steps:
  - id: s
    type: mystery
    config: {}
`
	dir := writeProject(t, projectYAML, map[string]string{"broken.yml": bad})

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected parse error")
	}
	code, _ := errors.CodeOf(err)
	if code != errors.ErrCodePipelineParse {
		t.Errorf("code = %v, want PIPELINE_PARSE", code)
	}
}

func TestLoad_MissingComponentType(t *testing.T) {
	bad := `pipeline_name: broken
steps:
  - id: s
    type: source
    config: {}
`
	dir := writeProject(t, projectYAML, map[string]string{"broken.yml": bad})

	if _, err := Load(dir); err == nil {
		t.Fatal("expected parse error for missing source_type")
	}
}

func TestValidate_AggregatesIssues(t *testing.T) {
	p := &Project{
		ProjectName: "x",
		Connections: map[string]Connection{},
		Pipelines: []*Pipeline{
			{
				Name:      "a",
				DependsOn: []string{"ghost"},
				Steps: []Step{
					{ID: "ext", Kind: KindSource, ComponentType: "csv"},
					{ID: "ld", Kind: KindEndpoint, ComponentType: "csv",
						Connection: "nowhere", DependsOn: []string{"missing"}},
				},
			},
		},
	}

	err := Validate(p)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		t.Fatal("expected AppError")
	}
	issues, _ := appErr.Details["issues"].([]string)
	if len(issues) != 3 {
		t.Errorf("issues = %v, want 3 entries (unknown pipeline, unknown step, unknown connection)", issues)
	}
}

func TestValidate_StepShapeRules(t *testing.T) {
	p := &Project{
		ProjectName: "x",
		Connections: map[string]Connection{},
		Pipelines: []*Pipeline{
			{
				Name: "a",
				Steps: []Step{
					{ID: "src", Kind: KindSource, ComponentType: "csv", DependsOn: []string{"src2"}},
					{ID: "src2", Kind: KindSource, ComponentType: "csv"},
					{ID: "proc", Kind: KindProcessor, ComponentType: "rename"},
				},
			},
		},
	}

	err := Validate(p)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		t.Fatal("expected AppError")
	}
	issues, _ := appErr.Details["issues"].([]string)
	if len(issues) != 2 {
		t.Errorf("issues = %v, want source-with-input and processor-without-input", issues)
	}
}

func TestLoad_EnvFileLoaded(t *testing.T) {
	dir := writeProject(t, projectYAML, map[string]string{
		"p.yml": "pipeline_name: p\nsteps:\n  - id: s\n    type: source\n    source_type: inline\n    config: {}\n",
	})
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DFT_TEST_ENV_KEY=from_env_file\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DFT_TEST_ENV_KEY") })

	if _, err := Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := os.Getenv("DFT_TEST_ENV_KEY"); got != "from_env_file" {
		t.Errorf("DFT_TEST_ENV_KEY = %q", got)
	}
}
