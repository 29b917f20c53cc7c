package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/dft/component"
)

func init() {
	component.RegisterSource("csv", func(cfg component.Config) (component.Source, error) {
		path := cfg.String("file_path")
		if path == "" {
			return nil, fmt.Errorf("csv source: file_path is required")
		}
		delim := cfg.StringOr("delimiter", ",")
		if len([]rune(delim)) != 1 {
			return nil, fmt.Errorf("csv source: delimiter must be a single character, got %q", delim)
		}
		return &csvSource{path: path, delimiter: []rune(delim)[0]}, nil
	})
}

// csvSource reads one CSV file per extraction. The first record is the
// header row.
type csvSource struct {
	path      string
	delimiter rune
}

func (s *csvSource) Extract(ctx context.Context, vars component.Vars) (*component.Packet, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("csv source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = s.delimiter
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv source %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv source %s: file has no header row", s.path)
	}

	tbl := component.NewTable(records[0]...)
	for _, rec := range records[1:] {
		row := make(component.Row, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		if err := tbl.Append(row); err != nil {
			return nil, fmt.Errorf("csv source %s: %w", s.path, err)
		}
	}

	pkt := component.NewPacket(tbl)
	pkt.Metadata["file_path"] = s.path
	if info, err := f.Stat(); err == nil {
		pkt.Metadata["file_size"] = info.Size()
	}
	return pkt, nil
}

// TestConnection reports whether the configured path is an existing .csv
// regular file.
func (s *csvSource) TestConnection(ctx context.Context) bool {
	info, err := os.Stat(s.path)
	if err != nil || info.IsDir() {
		return false
	}
	return strings.EqualFold(filepath.Ext(s.path), ".csv")
}
