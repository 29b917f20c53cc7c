package project

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/dft/errors"
	"github.com/kbukum/dft/validation"
)

// ProjectFileName is the project config file expected at the project root.
const ProjectFileName = "dft_project.yml"

// PipelinesDirName is the directory walked recursively for declarations.
const PipelinesDirName = "pipelines"

// Load reads the project at dir: .env first, then dft_project.yml, then
// every pipeline declaration under pipelines/. Returns a fully validated
// Project with pipelines sorted by name.
func Load(dir string) (*Project, error) {
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Project("load .env").WithCause(err)
		}
	}

	p, err := loadProjectFile(dir)
	if err != nil {
		return nil, err
	}

	pipelines, err := loadPipelines(dir)
	if err != nil {
		return nil, err
	}
	p.Pipelines = pipelines

	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func loadProjectFile(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFileName)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Project(fmt.Sprintf("missing %s in %s", ProjectFileName, dir)).WithCause(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Project(fmt.Sprintf("parse %s", ProjectFileName)).WithCause(err)
	}

	p := &Project{
		Dir:         dir,
		ProjectName: v.GetString("project_name"),
		State:       StateOptions{IgnoreInGit: v.GetBool("state.ignore_in_git")},
		Variables:   v.GetStringMap("variables"),
		Logging: LoggingOptions{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Connections: map[string]Connection{},
	}
	if p.Variables == nil {
		p.Variables = map[string]any{}
	}

	for id := range v.GetStringMap("connections") {
		fields := v.GetStringMap("connections." + id)
		typ, _ := fields["type"].(string)
		p.Connections[id] = Connection{Type: typ, Fields: fields}
	}
	return p, nil
}

// pipelineDoc mirrors one YAML document of a pipeline file.
type pipelineDoc struct {
	PipelineName string         `yaml:"pipeline_name"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	Tags         []string       `yaml:"tags"`
	DependsOn    []string       `yaml:"depends_on"`
	Variables    map[string]any `yaml:"variables"`
	Steps        []stepDoc      `yaml:"steps"`
}

type stepDoc struct {
	ID            string         `yaml:"id" validate:"required"`
	Type          string         `yaml:"type" validate:"required,oneof=source processor endpoint"`
	SourceType    string         `yaml:"source_type"`
	ProcessorType string         `yaml:"processor_type"`
	EndpointType  string         `yaml:"endpoint_type"`
	Connection    string         `yaml:"connection"`
	DependsOn     []string       `yaml:"depends_on"`
	Config        map[string]any `yaml:"config"`
}

func loadPipelines(dir string) ([]*Pipeline, error) {
	root := filepath.Join(dir, PipelinesDirName)
	if _, err := os.Stat(root); err != nil {
		return nil, errors.Project(fmt.Sprintf("missing %s/ directory in %s", PipelinesDirName, dir)).WithCause(err)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yml" || ext == ".yaml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Project("walk pipelines directory").WithCause(err)
	}
	sort.Strings(files)

	seen := map[string]string{}
	var pipelines []*Pipeline
	for _, file := range files {
		docs, err := parsePipelineFile(file)
		if err != nil {
			return nil, err
		}
		for _, pl := range docs {
			if prev, dup := seen[pl.Name]; dup {
				return nil, errors.DuplicatePipeline(pl.Name, prev, file)
			}
			seen[pl.Name] = file
			pipelines = append(pipelines, pl)
		}
	}

	sort.Slice(pipelines, func(i, j int) bool { return pipelines[i].Name < pipelines[j].Name })
	return pipelines, nil
}

func parsePipelineFile(file string) ([]*Pipeline, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.PipelineParse(file, "open failed").WithCause(err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	var out []*Pipeline
	for {
		var doc pipelineDoc
		if err := dec.Decode(&doc); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.PipelineParse(file, "invalid YAML").WithCause(err)
		}
		pl, err := buildPipeline(file, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, pl)
	}
	return out, nil
}

func buildPipeline(file string, doc pipelineDoc) (*Pipeline, error) {
	name := doc.PipelineName
	if name == "" {
		name = doc.Name
	}
	if name == "" {
		return nil, errors.PipelineParse(file, "declaration is missing pipeline_name")
	}

	pl := &Pipeline{
		Name:        name,
		Description: doc.Description,
		Tags:        doc.Tags,
		DependsOn:   doc.DependsOn,
		Variables:   doc.Variables,
		File:        file,
	}
	if pl.Variables == nil {
		pl.Variables = map[string]any{}
	}

	if raw, ok := pl.Variables["microbatch"]; ok {
		mb, err := parseMicrobatch(file, name, raw)
		if err != nil {
			return nil, err
		}
		pl.Microbatch = mb
		delete(pl.Variables, "microbatch")
	}

	for _, sd := range doc.Steps {
		step, err := buildStep(file, name, sd)
		if err != nil {
			return nil, err
		}
		pl.Steps = append(pl.Steps, step)
	}
	return pl, nil
}

func buildStep(file, pipeline string, sd stepDoc) (Step, error) {
	if err := validation.Struct(sd); err != nil {
		return Step{}, errors.PipelineParse(file,
			fmt.Sprintf("pipeline %q step %q: %s", pipeline, sd.ID, err))
	}

	var componentType string
	switch sd.Type {
	case KindSource:
		componentType = sd.SourceType
	case KindProcessor:
		componentType = sd.ProcessorType
	case KindEndpoint:
		componentType = sd.EndpointType
	}
	if componentType == "" {
		return Step{}, errors.PipelineParse(file,
			fmt.Sprintf("pipeline %q step %q: missing %s_type", pipeline, sd.ID, sd.Type))
	}

	cfg := sd.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	return Step{
		ID:            sd.ID,
		Kind:          sd.Type,
		ComponentType: componentType,
		Connection:    sd.Connection,
		DependsOn:     sd.DependsOn,
		Config:        cfg,
	}, nil
}

func parseMicrobatch(file, pipeline string, raw any) (*MicrobatchConfig, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.PipelineParse(file,
			fmt.Sprintf("pipeline %q: microbatch must be a mapping", pipeline))
	}

	mb := &MicrobatchConfig{}
	mb.EventTimeColumn, _ = m["event_time_column"].(string)
	mb.BatchSize, _ = m["batch_size"].(string)
	mb.Begin = stringField(m["begin"])
	mb.End = stringField(m["end"])
	if lb, ok := m["lookback"]; ok {
		n, ok := toIntValue(lb)
		if !ok || n < 0 {
			return nil, errors.PipelineParse(file,
				fmt.Sprintf("pipeline %q: microbatch lookback must be a non-negative integer", pipeline))
		}
		mb.Lookback = n
	}
	if mb.BatchSize == "" {
		return nil, errors.PipelineParse(file,
			fmt.Sprintf("pipeline %q: microbatch requires batch_size", pipeline))
	}
	return mb, nil
}

func stringField(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

func toIntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
