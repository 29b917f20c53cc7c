package component

import (
	"github.com/kbukum/dft/errors"
	"github.com/kbukum/dft/project"
	"github.com/kbukum/dft/template"
)

// Factory instantiates components for steps. It holds the project's
// connection table; the variable context arrives per build because batch
// variables change between windows.
type Factory struct {
	connections map[string]project.Connection
}

// NewFactory creates a factory over the project's connections.
func NewFactory(connections map[string]project.Connection) *Factory {
	return &Factory{connections: connections}
}

// Instance is the kind-erased result of a build. Exactly one field is set.
type Instance struct {
	Source    Source
	Processor Processor
	Endpoint  Endpoint
}

// Build renders the step's config (and its connection's fields) against
// ctx, merges the connection under the reserved sub-key, and instantiates
// via the registry. Instances are never cached: each window gets a fresh
// build with its own rendered config.
func (f *Factory) Build(step project.Step, ctx *template.Context) (*Instance, error) {
	cfg, err := f.renderConfig(step, ctx)
	if err != nil {
		return nil, err
	}

	switch step.Kind {
	case project.KindSource:
		ctor, ok := sourceFor(step.ComponentType)
		if !ok {
			return nil, errors.UnknownComponent(step.Kind, step.ComponentType)
		}
		src, err := ctor(cfg)
		if err != nil {
			return nil, err
		}
		return &Instance{Source: src}, nil

	case project.KindProcessor:
		ctor, ok := processorFor(step.ComponentType)
		if !ok {
			return nil, errors.UnknownComponent(step.Kind, step.ComponentType)
		}
		proc, err := ctor(cfg)
		if err != nil {
			return nil, err
		}
		return &Instance{Processor: proc}, nil

	case project.KindEndpoint:
		ctor, ok := endpointFor(step.ComponentType)
		if !ok {
			return nil, errors.UnknownComponent(step.Kind, step.ComponentType)
		}
		ep, err := ctor(cfg)
		if err != nil {
			return nil, err
		}
		return &Instance{Endpoint: ep}, nil
	}
	return nil, errors.UnknownComponent(step.Kind, step.ComponentType)
}

func (f *Factory) renderConfig(step project.Step, ctx *template.Context) (Config, error) {
	rendered, err := template.RenderConfig(step.Config, ctx)
	if err != nil {
		return nil, err
	}
	cfg := Config(rendered)

	if step.Connection != "" {
		conn, ok := f.connections[step.Connection]
		if !ok {
			return nil, errors.Dependency("step " + step.ID + " references unknown connection " + step.Connection)
		}
		fields, err := template.RenderConfig(conn.Fields, ctx)
		if err != nil {
			return nil, err
		}
		cfg[ConnectionKey] = fields
	}
	return cfg, nil
}
