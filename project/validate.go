package project

import (
	"github.com/kbukum/dft/validation"
)

// Validate checks cross-model invariants: dependency references, connection
// references, and per-pipeline step graph shape. All issues are collected
// before failing so a single run reports every problem.
func Validate(p *Project) error {
	v := validation.New()

	if p.ProjectName == "" {
		v.Addf("project_name is required")
	}

	names := map[string]bool{}
	for _, pl := range p.Pipelines {
		names[pl.Name] = true
	}

	for _, pl := range p.Pipelines {
		for _, dep := range pl.DependsOn {
			if !names[dep] {
				v.Addf("pipeline %q depends on unknown pipeline %q", pl.Name, dep)
			}
		}
		validateSteps(v, p, pl)
	}

	return v.Err()
}

func validateSteps(v *validation.Validator, p *Project, pl *Pipeline) {
	if len(pl.Steps) == 0 {
		v.Addf("pipeline %q has no steps", pl.Name)
		return
	}

	ids := map[string]bool{}
	for _, st := range pl.Steps {
		if ids[st.ID] {
			v.Addf("pipeline %q has duplicate step id %q", pl.Name, st.ID)
		}
		ids[st.ID] = true
	}

	for _, st := range pl.Steps {
		for _, dep := range st.DependsOn {
			if !ids[dep] {
				v.Addf("pipeline %q step %q depends on unknown step %q", pl.Name, st.ID, dep)
			}
		}
		switch st.Kind {
		case KindSource:
			if len(st.DependsOn) > 0 {
				v.Addf("pipeline %q source step %q cannot consume upstream packets", pl.Name, st.ID)
			}
		case KindProcessor, KindEndpoint:
			if len(st.DependsOn) == 0 {
				v.Addf("pipeline %q %s step %q requires at least one depends_on", pl.Name, st.Kind, st.ID)
			}
		}
		if st.Connection != "" {
			if _, ok := p.Connections[st.Connection]; !ok {
				v.Addf("pipeline %q step %q references unknown connection %q", pl.Name, st.ID, st.Connection)
			}
		}
	}
}
