package template

import (
	"strings"

	"github.com/kbukum/dft/errors"
)

// Eval parses and evaluates a single expression (without the {{ }} markers)
// against ctx, returning the typed result.
func Eval(expr string, ctx *Context) (any, error) {
	n, err := parseExpression(expr)
	if err != nil {
		return nil, errors.Template(expr, err.Error(), ctx.LayerNames())
	}
	e := &evaluator{ctx: ctx, expr: expr}
	return e.eval(n)
}

// Render substitutes every {{ expr }} span in s with the formatted result of
// evaluating expr against ctx. Strings without a marker are returned
// verbatim. Rendering is pure: the same input and context always produce the
// same output.
func Render(s string, ctx *Context) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var b strings.Builder
	rest := s
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:open])
		rest = rest[open+2:]

		close := strings.Index(rest, "}}")
		if close < 0 {
			return "", errors.Template(s, "unterminated {{ expression", ctx.LayerNames())
		}
		expr := strings.TrimSpace(rest[:close])
		rest = rest[close+2:]

		if expr == "" {
			return "", errors.Template(s, "empty {{ }} expression", ctx.LayerNames())
		}
		v, err := Eval(expr, ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(formatValue(v))
	}
}

// RenderValue renders string values and walks maps and slices recursively.
// Non-string scalars pass through untouched.
func RenderValue(v any, ctx *Context) (any, error) {
	switch val := v.(type) {
	case string:
		return Render(val, ctx)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			rendered, err := RenderValue(item, ctx)
			if err != nil {
				return nil, err
			}
			out[k] = rendered
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			rendered, err := RenderValue(item, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	default:
		return v, nil
	}
}

// RenderConfig renders every string leaf of a component configuration map.
func RenderConfig(cfg map[string]any, ctx *Context) (map[string]any, error) {
	out, err := RenderValue(cfg, ctx)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}
