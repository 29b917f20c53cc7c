package sources

import (
	"context"
	"fmt"

	"github.com/kbukum/dft/component"
)

func init() {
	component.RegisterSource("inline", func(cfg component.Config) (component.Source, error) {
		columns := cfg.Strings("columns")
		if len(columns) == 0 {
			return nil, fmt.Errorf("inline source: columns is required")
		}
		raw, _ := cfg["rows"].([]any)
		rows := make([]component.Row, 0, len(raw))
		for i, item := range raw {
			values, ok := item.([]any)
			if !ok {
				return nil, fmt.Errorf("inline source: row %d is not a list", i)
			}
			if len(values) != len(columns) {
				return nil, fmt.Errorf("inline source: row %d has %d values, want %d", i, len(values), len(columns))
			}
			rows = append(rows, component.Row(values))
		}
		return &inlineSource{columns: columns, rows: rows}, nil
	})
}

// inlineSource emits rows declared directly in the step config. Useful for
// seeding lookup data and for pipeline smoke tests.
type inlineSource struct {
	columns []string
	rows    []component.Row
}

func (s *inlineSource) Extract(ctx context.Context, vars component.Vars) (*component.Packet, error) {
	tbl := component.NewTable(s.columns...)
	for _, row := range s.rows {
		if err := tbl.Append(row); err != nil {
			return nil, err
		}
	}
	return component.NewPacket(tbl), nil
}

func (s *inlineSource) TestConnection(ctx context.Context) bool { return true }
