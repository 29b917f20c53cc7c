package endpoints

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbukum/dft/component"
)

func init() {
	component.RegisterEndpoint("csv", func(cfg component.Config) (component.Endpoint, error) {
		path := cfg.String("file_path")
		if path == "" {
			return nil, fmt.Errorf("csv endpoint: file_path is required")
		}
		delim := cfg.StringOr("delimiter", ",")
		if len([]rune(delim)) != 1 {
			return nil, fmt.Errorf("csv endpoint: delimiter must be a single character, got %q", delim)
		}
		return &csvEndpoint{path: path, delimiter: []rune(delim)[0]}, nil
	})
}

// csvEndpoint writes the packet to one CSV file, header first. Each load
// replaces the file; parent directories are created as needed.
type csvEndpoint struct {
	path      string
	delimiter rune
}

func (e *csvEndpoint) Load(ctx context.Context, pkt *component.Packet, vars component.Vars) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("csv endpoint: %w", err)
	}
	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("csv endpoint: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = e.delimiter
	if err := w.Write(pkt.Data.ColumnNames()); err != nil {
		return fmt.Errorf("csv endpoint %s: %w", e.path, err)
	}
	record := make([]string, len(pkt.Data.Columns))
	for _, row := range pkt.Data.Rows {
		for i, v := range row {
			if v == nil {
				record[i] = ""
			} else {
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csv endpoint %s: %w", e.path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv endpoint %s: %w", e.path, err)
	}
	return f.Close()
}
