package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/dft/component"
	"github.com/kbukum/dft/project"
	"github.com/kbukum/dft/template"
)

func step(tag string, cfg component.Config) project.Step {
	return project.Step{
		ID: "s", Kind: project.KindSource, ComponentType: tag,
		Config: map[string]any(cfg),
	}
}

func buildSource(t *testing.T, tag string, cfg component.Config) component.Source {
	t.Helper()
	inst, err := component.NewFactory(nil).Build(step(tag, cfg), template.NewContext())
	if err != nil {
		t.Fatalf("Build(%s): %v", tag, err)
	}
	return inst.Source
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCSVSource_Extract(t *testing.T) {
	path := writeCSV(t, "users.csv", "id,name\n1,alice\n2,bob\n")
	src := buildSource(t, "csv", component.Config{"file_path": path})

	pkt, err := src.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := pkt.Data.ColumnNames(); len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Errorf("columns = %v", got)
	}
	if pkt.Data.NumRows() != 2 {
		t.Fatalf("rows = %d", pkt.Data.NumRows())
	}
	if pkt.Data.Rows[1][1] != "bob" {
		t.Errorf("row[1][1] = %v", pkt.Data.Rows[1][1])
	}
	if pkt.Metadata["file_path"] != path {
		t.Errorf("metadata file_path = %v", pkt.Metadata["file_path"])
	}
	if size, ok := pkt.Metadata["file_size"].(int64); !ok || size == 0 {
		t.Errorf("metadata file_size = %v", pkt.Metadata["file_size"])
	}
}

func TestCSVSource_CustomDelimiter(t *testing.T) {
	path := writeCSV(t, "data.csv", "a;b\n1;2\n")
	src := buildSource(t, "csv", component.Config{"file_path": path, "delimiter": ";"})

	pkt, err := src.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if pkt.Data.Rows[0][1] != "2" {
		t.Errorf("row = %v", pkt.Data.Rows[0])
	}
}

func TestCSVSource_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "empty.csv", "id,name\n")
	src := buildSource(t, "csv", component.Config{"file_path": path})

	pkt, err := src.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if pkt.Data.NumRows() != 0 {
		t.Errorf("rows = %d, want 0", pkt.Data.NumRows())
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	src := buildSource(t, "csv", component.Config{
		"file_path": filepath.Join(t.TempDir(), "absent.csv"),
	})
	if _, err := src.Extract(context.Background(), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
	if src.TestConnection(context.Background()) {
		t.Error("TestConnection should fail for missing file")
	}
}

func TestCSVSource_MissingPathConfig(t *testing.T) {
	if _, err := component.NewFactory(nil).Build(step("csv", component.Config{}), template.NewContext()); err == nil {
		t.Fatal("expected error for missing file_path")
	}
}

func TestCSVSource_TestConnection(t *testing.T) {
	path := writeCSV(t, "ok.csv", "a\n")
	src := buildSource(t, "csv", component.Config{"file_path": path})
	if !src.TestConnection(context.Background()) {
		t.Error("TestConnection = false for existing .csv")
	}

	txt := writeCSV(t, "notes.txt", "a\n")
	src = buildSource(t, "csv", component.Config{"file_path": txt})
	if src.TestConnection(context.Background()) {
		t.Error("TestConnection = true for non-csv extension")
	}
}

func TestInlineSource_Extract(t *testing.T) {
	src := buildSource(t, "inline", component.Config{
		"columns": []any{"id", "name"},
		"rows": []any{
			[]any{1, "alice"},
			[]any{2, "bob"},
		},
	})
	pkt, err := src.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if pkt.Data.NumRows() != 2 || pkt.Data.Rows[0][1] != "alice" {
		t.Errorf("table = %+v", pkt.Data)
	}
	if !src.TestConnection(context.Background()) {
		t.Error("TestConnection = false")
	}
}

func TestInlineSource_RowShapeMismatch(t *testing.T) {
	_, err := component.NewFactory(nil).Build(step("inline", component.Config{
		"columns": []any{"id", "name"},
		"rows":    []any{[]any{1}},
	}), template.NewContext())
	if err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestPostgresSource_RequiresQuery(t *testing.T) {
	_, err := component.NewFactory(nil).Build(step("postgres", component.Config{}), template.NewContext())
	if err == nil {
		t.Fatal("expected error for missing query")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := component.Config{
		"query": "select 1",
		component.ConnectionKey: map[string]any{
			"host": "db.internal", "port": "5433",
			"user": "etl", "password": "secret", "database": "warehouse",
		},
	}
	got := postgresDSN(cfg)
	want := "host=db.internal port=5433 user=etl password=secret dbname=warehouse sslmode=disable"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}

func TestPostgresDSN_Defaults(t *testing.T) {
	got := postgresDSN(component.Config{"query": "select 1"})
	want := "host=localhost port=5432 user=postgres password= dbname=postgres sslmode=disable"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
