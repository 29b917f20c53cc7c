package runner

import (
	"context"
	"time"

	"github.com/kbukum/dft/component"
	"github.com/kbukum/dft/dag"
	"github.com/kbukum/dft/errors"
	"github.com/kbukum/dft/logger"
	"github.com/kbukum/dft/observability"
	"github.com/kbukum/dft/project"
	"github.com/kbukum/dft/template"
)

// PipelineRunner executes the step DAG of one pipeline for one plan entry.
type PipelineRunner struct {
	factory *component.Factory
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewPipelineRunner creates a runner over the project's component factory.
// metrics may be nil.
func NewPipelineRunner(factory *component.Factory, log *logger.Logger, metrics *observability.Metrics) *PipelineRunner {
	return &PipelineRunner{factory: factory, log: log, metrics: metrics}
}

// stepGraph builds the intra-pipeline DAG and returns the topological step
// order.
func stepGraph(pl *project.Pipeline) ([]string, error) {
	g := dag.New()
	for _, st := range pl.Steps {
		g.AddNode(st.ID)
	}
	for _, st := range pl.Steps {
		for _, dep := range st.DependsOn {
			if err := g.AddEdge(dep, st.ID); err != nil {
				return nil, err
			}
		}
	}
	return g.TopologicalOrder()
}

// Run executes one plan entry. tctx must already carry the project,
// pipeline, override, and (for windows) batch layers.
func (r *PipelineRunner) Run(ctx context.Context, pl *project.Pipeline, tctx *template.Context, entry Entry) error {
	order, err := stepGraph(pl)
	if err != nil {
		return err
	}

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	vars := component.Vars{
		component.VarPipeline: pl.Name,
	}
	if w := entry.Window; w != nil {
		vars[component.VarBatchStart] = w.Start
		vars[component.VarBatchEnd] = w.End
		vars[component.VarEventTimeColumn] = w.EventTimeColumn
	}

	log := r.log.WithPipeline(pl.Name)
	packets := make(map[string]*component.Packet, len(order))

	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := pl.Step(id)
		if err := r.runStep(ctx, pl, *step, tctx, vars, position, packets, log); err != nil {
			return err
		}
	}
	return nil
}

func (r *PipelineRunner) runStep(
	ctx context.Context,
	pl *project.Pipeline,
	step project.Step,
	tctx *template.Context,
	base component.Vars,
	position map[string]int,
	packets map[string]*component.Packet,
	log *logger.Logger,
) error {
	ctx, span := observability.StartSpan(ctx, "step."+step.ID)
	defer span.End()
	observability.SetSpanAttribute(ctx, "dft.pipeline", pl.Name)
	observability.SetSpanAttribute(ctx, "dft.step", step.ID)

	started := time.Now()
	log.Debug("step starting", logger.Fields(
		logger.FieldStep, step.ID,
		logger.FieldComponent, step.ComponentType,
	))

	inst, err := r.factory.Build(step, tctx)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return errors.Component(pl.Name, step.ID, err)
	}

	vars := component.Vars{component.VarStep: step.ID}
	for k, v := range base {
		vars[k] = v
	}

	var out *component.Packet
	switch step.Kind {
	case project.KindSource:
		out, err = inst.Source.Extract(ctx, vars)

	case project.KindProcessor:
		in, selErr := selectInput(step, position, packets)
		if selErr != nil {
			err = selErr
			break
		}
		out, err = inst.Processor.Process(ctx, in, vars)

	case project.KindEndpoint:
		in, selErr := selectInput(step, position, packets)
		if selErr != nil {
			err = selErr
			break
		}
		if in.Data != nil {
			r.metrics.RecordRowsLoaded(ctx, pl.Name, in.Data.NumRows())
		}
		err = inst.Endpoint.Load(ctx, in, vars)
	}

	r.metrics.RecordStepDuration(ctx, pl.Name, step.ID, time.Since(started))
	if err != nil {
		observability.SetSpanError(ctx, err)
		log.WithError(err).Error("step failed", logger.Fields(logger.FieldStep, step.ID))
		return errors.Component(pl.Name, step.ID, err)
	}

	if out != nil {
		packets[step.ID] = out
	}
	fields := logger.Fields(
		logger.FieldStep, step.ID,
		logger.FieldDuration, time.Since(started).Milliseconds(),
	)
	if out != nil && out.Data != nil {
		fields[logger.FieldRows] = out.Data.NumRows()
	}
	log.Debug("step finished", fields)
	return nil
}

// selectInput picks the step's single input packet: the latest producing
// upstream in topological order, ties broken by depends_on list position.
func selectInput(step project.Step, position map[string]int, packets map[string]*component.Packet) (*component.Packet, error) {
	best := -1
	var chosen *component.Packet
	for _, dep := range step.DependsOn {
		pkt, ok := packets[dep]
		if !ok {
			continue
		}
		if pos := position[dep]; pos > best {
			best = pos
			chosen = pkt
		}
	}
	if chosen == nil {
		return nil, errors.Dependency("step " + step.ID + " has no upstream packet")
	}
	return chosen, nil
}
