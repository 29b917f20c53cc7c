package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const projectTemplate = `project_name: %s

state:
  ignore_in_git: true

connections:
  postgres_default:
    type: postgres
    host: "{{ env_var('DB_HOST', 'localhost') }}"
    port: "{{ env_var('DB_PORT', '5432') }}"
    database: "{{ env_var('DB_NAME', 'analytics') }}"
    user: "{{ env_var('DB_USER', 'postgres') }}"
    password: "{{ env_var('DB_PASSWORD', '') }}"

variables:
  target: dev

logging:
  level: info
  format: console
`

const examplePipeline = `pipeline_name: example_pipeline
tags: [example, daily]

steps:
  - id: extract_data
    type: source
    source_type: csv
    config:
      file_path: "data/sample.csv"

  - id: validate_data
    type: processor
    processor_type: validator
    depends_on: [extract_data]
    config:
      required_columns: [id, name]
      row_count_min: 1

  - id: save_results
    type: endpoint
    endpoint_type: csv
    depends_on: [validate_data]
    config:
      file_path: "output/processed_{{ today() }}.csv"
`

const envTemplate = `# Copy to .env and fill in your credentials.
DB_HOST=localhost
DB_PORT=5432
DB_NAME=analytics
DB_USER=postgres
DB_PASSWORD=
`

const gitignoreTemplate = `.env
output/
.dft/
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <name>",
		Short: "Scaffold a new project directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if _, err := os.Stat(name); err == nil {
				return fmt.Errorf("directory %q already exists", name)
			}

			if err := scaffold(name); err != nil {
				os.RemoveAll(name)
				return err
			}

			cmd.Printf("Project %q initialized\n", name)
			cmd.Println("Next steps:")
			cmd.Printf("  1. cd %s\n", name)
			cmd.Println("  2. cp .env.example .env")
			cmd.Println("  3. dft run --select example_pipeline")
			return nil
		},
	}
}

func scaffold(name string) error {
	for _, dir := range []string{"pipelines", "data", "output"} {
		if err := os.MkdirAll(filepath.Join(name, dir), 0o755); err != nil {
			return err
		}
	}
	files := map[string]string{
		"dft_project.yml":                fmt.Sprintf(projectTemplate, name),
		".env.example":                   envTemplate,
		".gitignore":                     gitignoreTemplate,
		"pipelines/example_pipeline.yml": examplePipeline,
		"data/sample.csv":                "id,name\n1,alice\n2,bob\n",
	}
	for path, content := range files {
		if err := os.WriteFile(filepath.Join(name, path), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
