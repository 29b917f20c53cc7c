package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/dft/component"
	"github.com/kbukum/dft/dag"
	"github.com/kbukum/dft/errors"
	"github.com/kbukum/dft/logger"
	"github.com/kbukum/dft/observability"
	"github.com/kbukum/dft/project"
	"github.com/kbukum/dft/selector"
	"github.com/kbukum/dft/state"
	"github.com/kbukum/dft/template"
)

// Options configures one orchestrator invocation.
type Options struct {
	Select      []string
	Exclude     []string
	FullRefresh bool
	Overrides   map[string]any
	Now         func() time.Time
}

// Result summarizes an invocation. Statuses holds one terminal status per
// selected pipeline.
type Result struct {
	Statuses  map[string]string
	Succeeded int
	Failed    int
	Skipped   int
}

// ExitCode maps the result onto the CLI contract: 0 all success, 1 any
// failure or upstream skip.
func (r *Result) ExitCode() int {
	if r.Failed > 0 || r.Skipped > 0 {
		return errors.ExitRunFailed
	}
	return errors.ExitOK
}

// Orchestrator is the top-level control loop for one loaded project.
type Orchestrator struct {
	project *project.Project
	store   *state.Store
	factory *component.Factory
	log     *logger.Logger
	metrics *observability.Metrics
}

// New creates an orchestrator over a loaded project.
func New(p *project.Project, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		project: p,
		store:   state.NewStore(p.Dir),
		factory: component.NewFactory(p.Connections),
		log:     log,
		metrics: observability.NewMetrics(),
	}
}

// PipelineGraph builds the inter-pipeline dependency graph.
func PipelineGraph(p *project.Project) (*dag.Graph, error) {
	g := dag.New()
	for _, pl := range p.Pipelines {
		g.AddNode(pl.Name)
	}
	for _, pl := range p.Pipelines {
		for _, dep := range pl.DependsOn {
			if err := g.AddEdge(dep, pl.Name); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Validate runs the invocation-independent checks: inter-pipeline and step
// cycle checks and component type resolution. Reference resolution is
// already covered by project.Validate at load time.
func (o *Orchestrator) Validate() error {
	g, err := PipelineGraph(o.project)
	if err != nil {
		return err
	}
	if err := g.CycleCheck(); err != nil {
		return err
	}

	var issues []string
	for _, pl := range o.project.Pipelines {
		if _, err := stepGraph(pl); err != nil {
			issues = append(issues, fmt.Sprintf("pipeline %q: %v", pl.Name, err))
			continue
		}
		for _, st := range pl.Steps {
			if !component.Registered(st.Kind, st.ComponentType) {
				issues = append(issues, fmt.Sprintf(
					"pipeline %q step %q: unknown %s type %q",
					pl.Name, st.ID, st.Kind, st.ComponentType))
			}
		}
	}
	if len(issues) > 0 {
		return errors.Project(strings.Join(issues, "; ")).WithDetail("issues", issues)
	}
	return nil
}

// Run validates, selects, orders, and executes pipelines. The error return
// covers validation and selector failures; per-pipeline failures land in
// the Result.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	g, err := PipelineGraph(o.project)
	if err != nil {
		return nil, err
	}
	selected, err := selector.Resolve(opts.Select, opts.Exclude, o.project.Pipelines, g)
	if err != nil {
		return nil, err
	}

	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn()

	invocation := uuid.NewString()
	log := o.log.WithFields(logger.Fields(logger.FieldInvocation, invocation))
	log.Info("run starting", logger.Fields("pipelines", len(selected)))

	byName := make(map[string]*project.Pipeline, len(o.project.Pipelines))
	for _, pl := range o.project.Pipelines {
		byName[pl.Name] = pl
	}

	result := &Result{Statuses: map[string]string{}}
	for _, name := range selected {
		pl := byName[name]

		if ctx.Err() != nil {
			log.Warn("run cancelled", logger.Fields(logger.FieldPipeline, name))
			break
		}

		if blocked := o.blockedUpstream(pl, result.Statuses); blocked != "" {
			log.Warn("pipeline skipped", logger.Fields(
				logger.FieldPipeline, name,
				"blocked_by", blocked,
			))
			result.Statuses[name] = state.StatusSkipped
			result.Skipped++
			o.metrics.RecordPipelineRun(ctx, name, state.StatusSkipped)
			o.writeTerminal(pl, state.StatusSkipped, now)
			continue
		}

		status := o.runPipeline(ctx, pl, opts, now, log)
		result.Statuses[name] = status
		switch status {
		case state.StatusSuccess:
			result.Succeeded++
		default:
			result.Failed++
		}
		o.metrics.RecordPipelineRun(ctx, name, status)
	}

	log.Info("run finished", logger.Fields(
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
	))
	return result, nil
}

// blockedUpstream returns the first upstream pipeline that failed or was
// skipped in this invocation, or "".
func (o *Orchestrator) blockedUpstream(pl *project.Pipeline, statuses map[string]string) string {
	for _, dep := range pl.DependsOn {
		switch statuses[dep] {
		case state.StatusFailure, state.StatusSkipped:
			return dep
		}
	}
	return ""
}

func (o *Orchestrator) runPipeline(ctx context.Context, pl *project.Pipeline, opts Options, now time.Time, log *logger.Logger) string {
	plog := log.WithPipeline(pl.Name)
	ctx, span := observability.StartSpan(ctx, "pipeline."+pl.Name)
	defer span.End()

	st, err := o.store.Load(pl.Name)
	if err != nil {
		plog.WithError(err).Error("state load failed")
		return state.StatusFailure
	}

	strategy := StrategyFor(pl, opts.FullRefresh)
	entries, err := strategy.Plan(pl, st, now)
	if err != nil {
		plog.WithError(err).Error("planning failed")
		o.writeTerminal(pl, state.StatusFailure, now)
		return state.StatusFailure
	}
	if len(entries) == 0 {
		plog.Info("nothing to process")
		o.writeTerminal(pl, state.StatusSuccess, now)
		return state.StatusSuccess
	}

	base := template.NewContext().
		WithClock(func() time.Time { return now }).
		WithState(state.NewReader(st)).
		Push(template.LayerProject, o.project.Variables).
		Push(template.LayerPipeline, pl.Variables)

	runner := NewPipelineRunner(o.factory, o.log, o.metrics)

	// Lookback windows re-process time the cursor already covers; the
	// cursor itself must never move backwards.
	cursor, haveCursor, _ := readCursor(pl.Name, st, now.Location())

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			plog.Warn("pipeline cancelled before next window")
			return state.StatusFailure
		}

		tctx := base
		if w := entry.Window; w != nil {
			tctx = tctx.Push(template.LayerBatch, map[string]any{
				"batch_start":       template.NewTimestamp(w.Start),
				"batch_end":         template.NewTimestamp(w.End),
				"batch_period":      w.Period,
				"event_time_column": w.EventTimeColumn,
			})
			plog.Info("window starting", logger.Fields(logger.FieldWindow, w.String()))
		}
		tctx = tctx.Push(template.LayerOverrides, opts.Overrides)

		if err := runner.Run(ctx, pl, tctx, entry); err != nil {
			if ctx.Err() != nil {
				plog.Warn("pipeline cancelled mid-window")
				return state.StatusFailure
			}
			plog.WithError(err).Error("pipeline failed")
			o.writeTerminal(pl, state.StatusFailure, now)
			return state.StatusFailure
		}

		if w := entry.Window; w != nil {
			o.metrics.RecordWindow(ctx, pl.Name)
			if !haveCursor || w.End.After(cursor) {
				if err := o.store.Update(pl.Name, map[string]any{
					state.KeyLastProcessedTimestamp: template.NewTimestamp(w.End).ISOFormat(),
				}); err != nil {
					plog.WithError(err).Error("cursor update failed")
					return state.StatusFailure
				}
				cursor, haveCursor = w.End, true
			}
		}
	}

	terminal := map[string]any{
		state.KeyLastStatus: state.StatusSuccess,
		state.KeyLastRunAt:  template.NewTimestamp(now).ISOFormat(),
	}
	if pl.Microbatch == nil {
		terminal[state.KeyLastProcessedDate] = template.NewDate(now).String()
	}
	if err := o.store.Update(pl.Name, terminal); err != nil {
		plog.WithError(err).Error("state update failed")
		return state.StatusFailure
	}
	plog.Info("pipeline succeeded")
	return state.StatusSuccess
}

// writeTerminal records a terminal status without touching the cursor.
// Errors are logged and swallowed: a status bookkeeping failure must not
// mask the run outcome.
func (o *Orchestrator) writeTerminal(pl *project.Pipeline, status string, now time.Time) {
	err := o.store.Update(pl.Name, map[string]any{
		state.KeyLastStatus: status,
		state.KeyLastRunAt:  template.NewTimestamp(now).ISOFormat(),
	})
	if err != nil {
		o.log.WithPipeline(pl.Name).WithError(err).Warn("terminal status write failed")
	}
}
