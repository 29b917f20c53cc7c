package processors

import (
	"context"
	"strings"
	"testing"

	"github.com/kbukum/dft/component"
	"github.com/kbukum/dft/project"
	"github.com/kbukum/dft/template"
)

func buildProcessor(t *testing.T, tag string, cfg component.Config) component.Processor {
	t.Helper()
	st := project.Step{
		ID: "p", Kind: project.KindProcessor, ComponentType: tag,
		DependsOn: []string{"src"}, Config: map[string]any(cfg),
	}
	inst, err := component.NewFactory(nil).Build(st, template.NewContext())
	if err != nil {
		t.Fatalf("Build(%s): %v", tag, err)
	}
	return inst.Processor
}

func packet(t *testing.T, columns []string, rows ...component.Row) *component.Packet {
	t.Helper()
	tbl := component.NewTable(columns...)
	for _, r := range rows {
		if err := tbl.Append(r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return component.NewPacket(tbl)
}

func TestValidator_Passes(t *testing.T) {
	p := buildProcessor(t, "validator", component.Config{
		"row_count_min":    1,
		"row_count_max":    10,
		"required_columns": []any{"id", "name"},
		"schema_check":     true,
	})
	pkt := packet(t, []string{"id", "name"},
		component.Row{1, "alice"},
		component.Row{2, "bob"})

	out, err := p.Process(context.Background(), pkt, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Metadata["validation_passed"] != true {
		t.Errorf("validation_passed = %v", out.Metadata["validation_passed"])
	}
	if out.Metadata["validation_checks"] != 4 {
		t.Errorf("validation_checks = %v", out.Metadata["validation_checks"])
	}
}

func TestValidator_RowCountBounds(t *testing.T) {
	p := buildProcessor(t, "validator", component.Config{"row_count_min": 3})
	pkt := packet(t, []string{"id"}, component.Row{1})

	_, err := p.Process(context.Background(), pkt, nil)
	if err == nil || !strings.Contains(err.Error(), "below minimum 3") {
		t.Errorf("err = %v", err)
	}

	p = buildProcessor(t, "validator", component.Config{"row_count_max": 0})
	if _, err := p.Process(context.Background(), pkt, nil); err == nil {
		t.Error("expected row_count_max violation")
	}
}

func TestValidator_MissingColumnsAndNulls(t *testing.T) {
	p := buildProcessor(t, "validator", component.Config{
		"required_columns": []any{"id", "email"},
		"schema_check":     true,
	})
	pkt := packet(t, []string{"id"}, component.Row{nil}, component.Row{2})

	_, err := p.Process(context.Background(), pkt, nil)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "missing required columns: email") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(msg, `column "id" has 1 null values`) {
		t.Errorf("err = %v", err)
	}
	if pkt.Metadata["validation_passed"] != false {
		t.Errorf("validation_passed = %v", pkt.Metadata["validation_passed"])
	}
}

func TestRename_Columns(t *testing.T) {
	p := buildProcessor(t, "rename", component.Config{
		"columns": map[string]any{"usr": "user", "ts": "event_time"},
	})
	pkt := packet(t, []string{"usr", "ts", "value"}, component.Row{"a", "t1", 1})

	out, err := p.Process(context.Background(), pkt, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := []string{"user", "event_time", "value"}
	for i, c := range want {
		if out.Data.Columns[i] != c {
			t.Errorf("columns = %v, want %v", out.Data.Columns, want)
			break
		}
	}
	if out.Data.Rows[0][0] != "a" {
		t.Errorf("rows = %v", out.Data.Rows)
	}
}

func TestRename_UnknownColumn(t *testing.T) {
	p := buildProcessor(t, "rename", component.Config{
		"columns": map[string]any{"ghost": "spirit"},
	})
	pkt := packet(t, []string{"id"}, component.Row{1})
	if _, err := p.Process(context.Background(), pkt, nil); err == nil {
		t.Fatal("expected unknown column error")
	}
}

func TestFilter_Equals(t *testing.T) {
	p := buildProcessor(t, "filter", component.Config{
		"column": "status", "equals": "active",
	})
	pkt := packet(t, []string{"id", "status"},
		component.Row{1, "active"},
		component.Row{2, "deleted"},
		component.Row{3, "active"})

	out, err := p.Process(context.Background(), pkt, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Data.NumRows() != 2 {
		t.Errorf("rows = %d, want 2", out.Data.NumRows())
	}
	if out.Metadata["rows_filtered"] != 1 {
		t.Errorf("rows_filtered = %v", out.Metadata["rows_filtered"])
	}
}

func TestFilter_NotEquals(t *testing.T) {
	p := buildProcessor(t, "filter", component.Config{
		"column": "status", "not_equals": "deleted",
	})
	pkt := packet(t, []string{"status"},
		component.Row{"active"},
		component.Row{"deleted"})

	out, err := p.Process(context.Background(), pkt, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Data.NumRows() != 1 || out.Data.Rows[0][0] != "active" {
		t.Errorf("rows = %v", out.Data.Rows)
	}
}

func TestFilter_NumericComparesAsString(t *testing.T) {
	p := buildProcessor(t, "filter", component.Config{
		"column": "id", "equals": 2,
	})
	pkt := packet(t, []string{"id"}, component.Row{"1"}, component.Row{"2"})

	out, err := p.Process(context.Background(), pkt, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Data.NumRows() != 1 || out.Data.Rows[0][0] != "2" {
		t.Errorf("rows = %v", out.Data.Rows)
	}
}

func TestFilter_ConfigRejectsBothPredicates(t *testing.T) {
	st := project.Step{
		ID: "p", Kind: project.KindProcessor, ComponentType: "filter",
		DependsOn: []string{"src"},
		Config:    map[string]any{"column": "c", "equals": 1, "not_equals": 2},
	}
	if _, err := component.NewFactory(nil).Build(st, template.NewContext()); err == nil {
		t.Fatal("expected config error")
	}
}
