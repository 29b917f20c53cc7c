package template

import (
	"fmt"
	"time"

	"github.com/kbukum/dft/errors"
)

type evaluator struct {
	ctx  *Context
	expr string
}

func (e *evaluator) errorf(format string, args ...any) error {
	return errors.Template(e.expr, fmt.Sprintf(format, args...), e.ctx.LayerNames())
}

func (e *evaluator) eval(n node) (any, error) {
	switch nd := n.(type) {
	case literalNode:
		return nd.value, nil
	case identNode:
		return e.evalIdent(nd)
	case fieldNode:
		return e.evalField(nd)
	case callNode:
		if nd.recv == nil {
			return e.evalBuiltin(nd)
		}
		return e.evalMethod(nd)
	case binaryNode:
		return e.evalBinary(nd)
	}
	return nil, e.errorf("unsupported expression node %T", n)
}

// stateHandle marks the bare identifier `state` so that state.get(...)
// resolves against the pipeline state reader rather than a variable.
type stateHandle struct{}

func (e *evaluator) evalIdent(n identNode) (any, error) {
	if n.name == "state" {
		return stateHandle{}, nil
	}
	if v, ok := e.ctx.Lookup(n.name); ok {
		return v, nil
	}
	return nil, e.errorf("unknown variable %q", n.name)
}

func (e *evaluator) evalField(n fieldNode) (any, error) {
	recv, err := e.eval(n.recv)
	if err != nil {
		return nil, err
	}
	if m, ok := recv.(map[string]any); ok {
		if v, ok := m[n.name]; ok {
			return v, nil
		}
		return nil, e.errorf("unknown attribute %q", n.name)
	}
	return nil, e.errorf("value of type %T has no attribute %q", recv, n.name)
}

func (e *evaluator) evalBuiltin(n callNode) (any, error) {
	switch n.name {
	case "var":
		return e.builtinVar(n)
	case "env_var":
		return e.builtinEnvVar(n)
	case "today":
		if err := e.wantArgs(n, 0); err != nil {
			return nil, err
		}
		return NewDate(e.ctx.Now()), nil
	case "yesterday":
		if err := e.wantArgs(n, 0); err != nil {
			return nil, err
		}
		return NewDate(e.ctx.Now().AddDate(0, 0, -1)), nil
	case "now":
		if err := e.wantArgs(n, 0); err != nil {
			return nil, err
		}
		return NewTimestamp(e.ctx.Now()), nil
	case "days_ago":
		return e.builtinDaysAgo(n)
	case "timedelta":
		return e.builtinTimedelta(n)
	}
	return nil, e.errorf("unknown function %q", n.name)
}

func (e *evaluator) wantArgs(n callNode, count int) error {
	if len(n.args) != count || len(n.kwargs) != 0 {
		return e.errorf("%s() takes %d argument(s)", n.name, count)
	}
	return nil
}

func (e *evaluator) builtinVar(n callNode) (any, error) {
	if len(n.args) != 1 || len(n.kwargs) != 0 {
		return nil, e.errorf("var() takes exactly one argument")
	}
	arg, err := e.eval(n.args[0])
	if err != nil {
		return nil, err
	}
	name, ok := arg.(string)
	if !ok {
		return nil, e.errorf("var() argument must be a string, got %T", arg)
	}
	if v, ok := e.ctx.Lookup(name); ok {
		return v, nil
	}
	return nil, e.errorf("unknown variable %q", name)
}

func (e *evaluator) builtinEnvVar(n callNode) (any, error) {
	if len(n.args) < 1 || len(n.args) > 2 || len(n.kwargs) != 0 {
		return nil, e.errorf("env_var() takes one or two arguments")
	}
	arg, err := e.eval(n.args[0])
	if err != nil {
		return nil, err
	}
	name, ok := arg.(string)
	if !ok {
		return nil, e.errorf("env_var() name must be a string, got %T", arg)
	}
	if v, ok := e.ctx.env(name); ok {
		return v, nil
	}
	if len(n.args) == 2 {
		return e.eval(n.args[1])
	}
	return nil, e.errorf("environment variable %q is not set and no default was given", name)
}

func (e *evaluator) builtinDaysAgo(n callNode) (any, error) {
	if len(n.args) != 1 || len(n.kwargs) != 0 {
		return nil, e.errorf("days_ago() takes exactly one argument")
	}
	arg, err := e.eval(n.args[0])
	if err != nil {
		return nil, err
	}
	days, ok := toInt(arg)
	if !ok {
		return nil, e.errorf("days_ago() argument must be an integer, got %T", arg)
	}
	return NewDate(e.ctx.Now().AddDate(0, 0, -int(days))), nil
}

func (e *evaluator) builtinTimedelta(n callNode) (any, error) {
	if len(n.args) != 0 {
		return nil, e.errorf("timedelta() accepts keyword arguments only")
	}
	var d time.Duration
	for _, kw := range n.kwargs {
		val, err := e.eval(kw.value)
		if err != nil {
			return nil, err
		}
		amount, ok := toInt(val)
		if !ok {
			return nil, e.errorf("timedelta(%s=...) must be an integer, got %T", kw.name, val)
		}
		switch kw.name {
		case "days":
			d += time.Duration(amount) * 24 * time.Hour
		case "hours":
			d += time.Duration(amount) * time.Hour
		case "minutes":
			d += time.Duration(amount) * time.Minute
		case "seconds":
			d += time.Duration(amount) * time.Second
		case "weeks":
			d += time.Duration(amount) * 7 * 24 * time.Hour
		default:
			return nil, e.errorf("timedelta() got an unexpected keyword argument %q", kw.name)
		}
	}
	return Timedelta{Duration: d}, nil
}

func (e *evaluator) evalMethod(n callNode) (any, error) {
	recv, err := e.eval(n.recv)
	if err != nil {
		return nil, err
	}

	switch r := recv.(type) {
	case stateHandle:
		if n.name == "get" {
			return e.stateGet(n)
		}
		return nil, e.errorf("state has no method %q", n.name)

	case Timestamp:
		switch n.name {
		case "strftime":
			if len(n.args) != 1 || len(n.kwargs) != 0 {
				return nil, e.errorf("strftime() takes exactly one argument")
			}
			arg, err := e.eval(n.args[0])
			if err != nil {
				return nil, err
			}
			format, ok := arg.(string)
			if !ok {
				return nil, e.errorf("strftime() format must be a string, got %T", arg)
			}
			return r.Strftime(format), nil
		case "isoformat":
			if len(n.args) != 0 || len(n.kwargs) != 0 {
				return nil, e.errorf("isoformat() takes no arguments")
			}
			return r.ISOFormat(), nil
		}
		return nil, e.errorf("timestamp has no method %q", n.name)
	}
	return nil, e.errorf("value of type %T has no method %q", recv, n.name)
}

func (e *evaluator) stateGet(n callNode) (any, error) {
	if len(n.args) < 1 || len(n.args) > 2 || len(n.kwargs) != 0 {
		return nil, e.errorf("state.get() takes one or two arguments")
	}
	arg, err := e.eval(n.args[0])
	if err != nil {
		return nil, err
	}
	key, ok := arg.(string)
	if !ok {
		return nil, e.errorf("state.get() key must be a string, got %T", arg)
	}
	if e.ctx.state != nil {
		if v, ok := e.ctx.state.Get(key); ok {
			return v, nil
		}
	}
	if len(n.args) == 2 {
		return e.eval(n.args[1])
	}
	return nil, e.errorf("state key %q is not set and no default was given", key)
}

func (e *evaluator) evalBinary(n binaryNode) (any, error) {
	left, err := e.eval(n.left)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(n.right)
	if err != nil {
		return nil, err
	}

	if ts, ok := left.(Timestamp); ok {
		if td, ok := right.(Timedelta); ok {
			return addDelta(ts, td, n.op), nil
		}
		return nil, e.errorf("cannot apply %q to timestamp and %T", n.op, right)
	}
	if td, ok := left.(Timedelta); ok {
		switch r := right.(type) {
		case Timedelta:
			if n.op == '+' {
				return Timedelta{Duration: td.Duration + r.Duration}, nil
			}
			return Timedelta{Duration: td.Duration - r.Duration}, nil
		case Timestamp:
			if n.op == '+' {
				return addDelta(r, td, '+'), nil
			}
		}
		return nil, e.errorf("cannot apply %q to timedelta and %T", n.op, right)
	}

	li, lok := toInt(left)
	ri, rok := toInt(right)
	if lok && rok {
		if n.op == '+' {
			return li + ri, nil
		}
		return li - ri, nil
	}
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		if n.op == '+' {
			return lf + rf, nil
		}
		return lf - rf, nil
	}
	if ls, ok := left.(string); ok && n.op == '+' {
		if rs, ok := right.(string); ok {
			return ls + rs, nil
		}
	}
	return nil, e.errorf("cannot apply %q to %T and %T", n.op, left, right)
}

// addDelta preserves DateOnly only when the delta shifts by whole days, so
// today() - timedelta(days=7) still renders as a date.
func addDelta(ts Timestamp, td Timedelta, op byte) Timestamp {
	d := td.Duration
	if op == '-' {
		d = -d
	}
	out := Timestamp{Time: ts.Time.Add(d)}
	if ts.DateOnly && d%(24*time.Hour) == 0 {
		out.DateOnly = true
	}
	return out
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
