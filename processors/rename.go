package processors

import (
	"context"
	"fmt"

	"github.com/kbukum/dft/component"
)

func init() {
	component.RegisterProcessor("rename", func(cfg component.Config) (component.Processor, error) {
		renames := cfg.Map("columns")
		if len(renames) == 0 {
			return nil, fmt.Errorf("rename processor: columns is required")
		}
		mapping := make(map[string]string, len(renames))
		for from, to := range renames {
			name, ok := to.(string)
			if !ok || name == "" {
				return nil, fmt.Errorf("rename processor: new name for %q must be a non-empty string", from)
			}
			mapping[from] = name
		}
		return &renameProcessor{mapping: mapping}, nil
	})
}

// renameProcessor rewrites column names in place. Rows are shared with the
// incoming packet; only the column list is copied.
type renameProcessor struct {
	mapping map[string]string
}

func (p *renameProcessor) Process(ctx context.Context, pkt *component.Packet, vars component.Vars) (*component.Packet, error) {
	for from := range p.mapping {
		if pkt.Data.ColumnIndex(from) < 0 {
			return nil, fmt.Errorf("rename processor: unknown column %q", from)
		}
	}
	columns := make([]string, len(pkt.Data.Columns))
	for i, c := range pkt.Data.Columns {
		if to, ok := p.mapping[c]; ok {
			columns[i] = to
		} else {
			columns[i] = c
		}
	}
	out := &component.Table{Columns: columns, Rows: pkt.Data.Rows}
	next := component.NewPacket(out)
	next.Metadata = pkt.Metadata
	return next, nil
}
