package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/dft/component"
	"github.com/kbukum/dft/util"
)

func init() {
	component.RegisterProcessor("validator", func(cfg component.Config) (component.Processor, error) {
		v := &validatorProcessor{requiredColumns: cfg.Strings("required_columns")}
		if n, ok := cfg.Int("row_count_min"); ok {
			v.rowCountMin = util.Ptr(n)
		}
		if n, ok := cfg.Int("row_count_max"); ok {
			v.rowCountMax = util.Ptr(n)
		}
		v.schemaCheck = cfg.Bool("schema_check")
		return v, nil
	})
}

// validatorProcessor checks row counts, required columns, and optionally
// nulls in required columns. The packet passes through with
// validation_passed and validation_checks recorded in its metadata; a failed
// check fails the step.
type validatorProcessor struct {
	rowCountMin     *int
	rowCountMax     *int
	requiredColumns []string
	schemaCheck     bool
}

func (v *validatorProcessor) Process(ctx context.Context, pkt *component.Packet, vars component.Vars) (*component.Packet, error) {
	var problems []string
	checks := 0

	rows := pkt.Data.NumRows()
	if v.rowCountMin != nil {
		checks++
		if rows < *v.rowCountMin {
			problems = append(problems, fmt.Sprintf("row count %d below minimum %d", rows, *v.rowCountMin))
		}
	}
	if v.rowCountMax != nil {
		checks++
		if rows > *v.rowCountMax {
			problems = append(problems, fmt.Sprintf("row count %d above maximum %d", rows, *v.rowCountMax))
		}
	}

	var missing []string
	if len(v.requiredColumns) > 0 {
		checks++
		for _, col := range v.requiredColumns {
			if pkt.Data.ColumnIndex(col) < 0 {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
		}
	}

	if v.schemaCheck {
		checks++
		for _, col := range v.requiredColumns {
			idx := pkt.Data.ColumnIndex(col)
			if idx < 0 {
				continue
			}
			nulls := 0
			for _, row := range pkt.Data.Rows {
				if row[idx] == nil {
					nulls++
				}
			}
			if nulls > 0 {
				problems = append(problems, fmt.Sprintf("column %q has %d null values", col, nulls))
			}
		}
	}

	pkt.Metadata["validation_passed"] = len(problems) == 0
	pkt.Metadata["validation_checks"] = checks

	if len(problems) > 0 {
		return nil, fmt.Errorf("data validation failed: %s", strings.Join(problems, "; "))
	}
	return pkt, nil
}
