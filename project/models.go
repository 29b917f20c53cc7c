package project

import "github.com/kbukum/dft/util"

// Step kinds.
const (
	KindSource    = "source"
	KindProcessor = "processor"
	KindEndpoint  = "endpoint"
)

// Project is the immutable root model for one invocation.
type Project struct {
	Dir         string
	ProjectName string
	State       StateOptions
	Connections map[string]Connection
	Variables   map[string]any
	Logging     LoggingOptions
	Pipelines   []*Pipeline
}

// StateOptions carries the state-store options from dft_project.yml.
type StateOptions struct {
	IgnoreInGit bool
}

// LoggingOptions carries the logging record from dft_project.yml.
type LoggingOptions struct {
	Level  string
	Format string
}

// Connection is a reusable configuration record referenced by steps via
// `connection: <id>`. Fields holds the full record including the type tag;
// values may contain template expressions.
type Connection struct {
	Type   string
	Fields map[string]any
}

// Pipeline is one declaration parsed from a pipelines/ file.
type Pipeline struct {
	Name        string
	Description string
	Tags        []string
	DependsOn   []string
	Variables   map[string]any
	Microbatch  *MicrobatchConfig
	Steps       []Step
	File        string
}

// HasTag reports whether the pipeline's tag list includes t.
func (p *Pipeline) HasTag(t string) bool {
	return util.Contains(p.Tags, t)
}

// Step returns the step with the given id, or nil.
func (p *Pipeline) Step(id string) *Step {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// MicrobatchConfig is the optional `microbatch` sub-record of a pipeline's
// variables. Begin and End stay as declared text; the execution strategy
// parses them as they are, and template expressions in them are not
// rendered.
type MicrobatchConfig struct {
	EventTimeColumn string
	BatchSize       string
	Lookback        int
	Begin           string
	End             string
}

// Step is one node of a pipeline's step graph.
type Step struct {
	ID            string
	Kind          string
	ComponentType string
	Connection    string
	DependsOn     []string
	Config        map[string]any
}
