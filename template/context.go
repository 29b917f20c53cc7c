package template

import (
	"os"
	"time"
)

// Layer names, from lowest to highest precedence. They appear in
// TemplateError details so a failed lookup reports where it searched.
const (
	LayerProject   = "project"
	LayerPipeline  = "pipeline"
	LayerBatch     = "batch"
	LayerOverrides = "overrides"
)

// StateReader exposes the current pipeline's durable state to templates.
type StateReader interface {
	Get(key string) (any, bool)
}

type layer struct {
	name string
	vars map[string]any
}

// Context is an immutable layered variable context. Push returns a new
// Context; existing ones are never mutated, so one snapshot can be shared
// across the steps of a plan entry.
type Context struct {
	layers []layer
	state  StateReader
	clock  func() time.Time
	env    func(string) (string, bool)
}

// NewContext creates a context with no variable layers. The clock defaults
// to time.Now and environment reads default to os.LookupEnv.
func NewContext() *Context {
	return &Context{
		clock: time.Now,
		env:   os.LookupEnv,
	}
}

// Push returns a new Context with vars stacked as the highest-precedence
// layer. A nil or empty vars map still records the layer name for error
// reporting.
func (c *Context) Push(name string, vars map[string]any) *Context {
	next := c.shallowCopy()
	next.layers = append(append([]layer(nil), c.layers...), layer{name: name, vars: vars})
	return next
}

// WithState returns a new Context bound to a pipeline state reader.
func (c *Context) WithState(st StateReader) *Context {
	next := c.shallowCopy()
	next.state = st
	return next
}

// WithClock returns a new Context using clock for now()/today(). Tests use
// this to freeze time; the orchestrator uses it to pin one instant per
// invocation.
func (c *Context) WithClock(clock func() time.Time) *Context {
	next := c.shallowCopy()
	next.clock = clock
	return next
}

// WithEnv returns a new Context using env for env_var lookups.
func (c *Context) WithEnv(env func(string) (string, bool)) *Context {
	next := c.shallowCopy()
	next.env = env
	return next
}

func (c *Context) shallowCopy() *Context {
	return &Context{
		layers: c.layers,
		state:  c.state,
		clock:  c.clock,
		env:    c.env,
	}
}

// Lookup resolves name searching layers from highest to lowest precedence.
func (c *Context) Lookup(name string) (any, bool) {
	for i := len(c.layers) - 1; i >= 0; i-- {
		if v, ok := c.layers[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LayerNames returns the names of the stacked layers, lowest first.
func (c *Context) LayerNames() []string {
	names := make([]string, len(c.layers))
	for i, l := range c.layers {
		names[i] = l.name
	}
	return names
}

// Now returns the invocation instant from the context clock.
func (c *Context) Now() time.Time { return c.clock() }
