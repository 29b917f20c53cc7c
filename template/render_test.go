package template

import (
	"testing"
	"time"

	"github.com/kbukum/dft/errors"
)

var frozen = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func testContext() *Context {
	return NewContext().
		WithClock(func() time.Time { return frozen }).
		WithEnv(func(string) (string, bool) { return "", false })
}

type mapState map[string]any

func (m mapState) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func TestRender_PlainStringVerbatim(t *testing.T) {
	got, err := Render("no markers here", testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "no markers here" {
		t.Errorf("got %q", got)
	}
}

func TestRender_VariableLookup(t *testing.T) {
	ctx := testContext().
		Push(LayerProject, map[string]any{"schema": "proj", "owner": "data"}).
		Push(LayerPipeline, map[string]any{"schema": "pipe"})

	got, err := Render("{{ var('schema') }}.{{ owner }}", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "pipe.data" {
		t.Errorf("got %q, want pipe.data", got)
	}
}

func TestRender_LayerPrecedence(t *testing.T) {
	ctx := testContext().
		Push(LayerProject, map[string]any{"x": "project"}).
		Push(LayerPipeline, map[string]any{"x": "pipeline"}).
		Push(LayerBatch, map[string]any{"x": "batch"}).
		Push(LayerOverrides, map[string]any{"x": "override"})

	got, err := Render("{{ x }}", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "override" {
		t.Errorf("got %q, want override", got)
	}
}

func TestRender_UnknownVariable(t *testing.T) {
	ctx := testContext().Push(LayerProject, map[string]any{"a": 1})

	_, err := Render("{{ var('missing') }}", ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	code, ok := errors.CodeOf(err)
	if !ok || code != errors.ErrCodeTemplate {
		t.Errorf("code = %v, want TEMPLATE_ERROR", code)
	}
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		t.Fatal("expected AppError")
	}
	searched, _ := appErr.Details["searched_keys"].([]string)
	if len(searched) != 1 || searched[0] != LayerProject {
		t.Errorf("searched_keys = %v, want [project]", searched)
	}
}

func TestRender_EnvVar(t *testing.T) {
	ctx := testContext().WithEnv(func(name string) (string, bool) {
		if name == "DB_HOST" {
			return "db.internal", true
		}
		return "", false
	})

	got, err := Render("{{ env_var('DB_HOST') }}", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "db.internal" {
		t.Errorf("got %q", got)
	}

	got, err = Render("{{ env_var('MISSING', 'fallback') }}", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}

	if _, err := Render("{{ env_var('MISSING') }}", ctx); err == nil {
		t.Error("expected error for unset variable without default")
	}
}

func TestRender_DateHelpers(t *testing.T) {
	ctx := testContext()

	cases := []struct {
		in   string
		want string
	}{
		{"{{ today() }}", "2024-03-15"},
		{"{{ yesterday() }}", "2024-03-14"},
		{"{{ days_ago(7) }}", "2024-03-08"},
		{"{{ now() }}", "2024-03-15T10:30:00+00:00"},
		{"{{ now().strftime('%Y-%m-%d %H:%M') }}", "2024-03-15 10:30"},
		{"{{ today().strftime('%Y/%m/%d') }}", "2024/03/15"},
		{"{{ now().isoformat() }}", "2024-03-15T10:30:00+00:00"},
	}
	for _, tc := range cases {
		got, err := Render(tc.in, ctx)
		if err != nil {
			t.Errorf("Render(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Render(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRender_TimedeltaArithmetic(t *testing.T) {
	ctx := testContext()

	cases := []struct {
		in   string
		want string
	}{
		{"{{ now() - timedelta(hours=2) }}", "2024-03-15T08:30:00+00:00"},
		{"{{ now() + timedelta(minutes=90) }}", "2024-03-15T12:00:00+00:00"},
		{"{{ today() - timedelta(days=7) }}", "2024-03-08"},
		{"{{ today() - timedelta(hours=1) }}", "2024-03-14T23:00:00+00:00"},
	}
	for _, tc := range cases {
		got, err := Render(tc.in, ctx)
		if err != nil {
			t.Errorf("Render(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Render(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRender_StateGet(t *testing.T) {
	st := mapState{"last_processed_timestamp": "2024-03-01T00:00:00+00:00"}
	ctx := testContext().WithState(st)

	got, err := Render("{{ state.get('last_processed_timestamp') }}", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-03-01T00:00:00+00:00" {
		t.Errorf("got %q", got)
	}

	got, err = Render("{{ state.get('missing', 'none') }}", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "none" {
		t.Errorf("got %q, want none", got)
	}

	if _, err := Render("{{ state.get('missing') }}", ctx); err == nil {
		t.Error("expected error for missing key without default")
	}
}

func TestRender_BatchVariables(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	ctx := testContext().Push(LayerBatch, map[string]any{
		"batch_start": NewTimestamp(start),
		"batch_end":   NewTimestamp(end),
	})

	got, err := Render("ts >= '{{ batch_start }}' AND ts < '{{ batch_end }}'", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "ts >= '2024-03-01T00:00:00+00:00' AND ts < '2024-03-02T00:00:00+00:00'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, err = Render("{{ batch_start.strftime('%Y%m') }}", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "202403" {
		t.Errorf("got %q, want 202403", got)
	}
}

func TestRender_MultipleExpressions(t *testing.T) {
	ctx := testContext().Push(LayerPipeline, map[string]any{"a": "one", "b": "two"})

	got, err := Render("{{ a }}-{{ b }}-{{ a }}", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "one-two-one" {
		t.Errorf("got %q", got)
	}
}

func TestRender_Unterminated(t *testing.T) {
	_, err := Render("before {{ today() ", testContext())
	if err == nil {
		t.Fatal("expected error")
	}
	code, _ := errors.CodeOf(err)
	if code != errors.ErrCodeTemplate {
		t.Errorf("code = %v, want TEMPLATE_ERROR", code)
	}
}

func TestRender_Idempotent(t *testing.T) {
	ctx := testContext().Push(LayerPipeline, map[string]any{"v": "plain"})
	first, err := Render("{{ v }} suffix", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Render(first, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("render not idempotent: %q vs %q", first, second)
	}
}

func TestRenderConfig_NestedStructures(t *testing.T) {
	ctx := testContext().Push(LayerPipeline, map[string]any{"schema": "analytics"})
	cfg := map[string]any{
		"table":   "{{ schema }}.events",
		"port":    5432,
		"columns": []any{"{{ schema }}_id", "ts"},
		"options": map[string]any{"where": "d = '{{ today() }}'"},
	}

	out, err := RenderConfig(cfg, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["table"] != "analytics.events" {
		t.Errorf("table = %v", out["table"])
	}
	if out["port"] != 5432 {
		t.Errorf("port = %v, want untouched 5432", out["port"])
	}
	cols := out["columns"].([]any)
	if cols[0] != "analytics_id" {
		t.Errorf("columns[0] = %v", cols[0])
	}
	opts := out["options"].(map[string]any)
	if opts["where"] != "d = '2024-03-15'" {
		t.Errorf("where = %v", opts["where"])
	}
}

func TestEval_TypedResults(t *testing.T) {
	ctx := testContext()

	v, err := Eval("today()", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, ok := v.(Timestamp)
	if !ok || !ts.DateOnly {
		t.Errorf("today() = %#v, want date-only Timestamp", v)
	}

	v, err = Eval("1 + 2", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(3) {
		t.Errorf("1 + 2 = %#v, want int64(3)", v)
	}
}

func TestEval_ParseErrors(t *testing.T) {
	for _, in := range []string{"today(", "'open", "1 +", "a..b", "f(x=1, 2)"} {
		if _, err := Eval(in, testContext()); err == nil {
			t.Errorf("Eval(%q): expected error", in)
		}
	}
}
