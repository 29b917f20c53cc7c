package processors

import (
	"context"
	"fmt"

	"github.com/kbukum/dft/component"
)

func init() {
	component.RegisterProcessor("filter", func(cfg component.Config) (component.Processor, error) {
		column := cfg.String("column")
		if column == "" {
			return nil, fmt.Errorf("filter processor: column is required")
		}
		_, hasEquals := cfg["equals"]
		_, hasNotEquals := cfg["not_equals"]
		if hasEquals == hasNotEquals {
			return nil, fmt.Errorf("filter processor: exactly one of equals or not_equals is required")
		}
		return &filterProcessor{
			column:    column,
			value:     cfg["equals"],
			negValue:  cfg["not_equals"],
			keepEqual: hasEquals,
		}, nil
	})
}

// filterProcessor keeps rows whose column matches (equals) or differs from
// (not_equals) a literal value. Comparison is on the string rendering so
// YAML numerics and CSV strings compare naturally.
type filterProcessor struct {
	column    string
	value     any
	negValue  any
	keepEqual bool
}

func (p *filterProcessor) Process(ctx context.Context, pkt *component.Packet, vars component.Vars) (*component.Packet, error) {
	idx := pkt.Data.ColumnIndex(p.column)
	if idx < 0 {
		return nil, fmt.Errorf("filter processor: unknown column %q", p.column)
	}
	want := p.value
	if !p.keepEqual {
		want = p.negValue
	}
	wantStr := fmt.Sprintf("%v", want)

	out := component.NewTable(pkt.Data.Columns...)
	for _, row := range pkt.Data.Rows {
		equal := fmt.Sprintf("%v", row[idx]) == wantStr
		if equal == p.keepEqual {
			out.Rows = append(out.Rows, row)
		}
	}
	next := component.NewPacket(out)
	next.Metadata = pkt.Metadata
	next.Metadata["rows_filtered"] = pkt.Data.NumRows() - out.NumRows()
	return next, nil
}
