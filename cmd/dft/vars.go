package main

import (
	"fmt"
	"strings"
)

// parseVars turns repeated --vars flags of the form k=v[,k=v] into the
// override map. Values remain strings; later assignments win.
func parseVars(flags []string) (map[string]any, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	out := map[string]any{}
	for _, flag := range flags {
		for _, pair := range strings.Split(flag, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			key, value, found := strings.Cut(pair, "=")
			key = strings.TrimSpace(key)
			if !found || key == "" {
				return nil, fmt.Errorf("invalid --vars entry %q, want k=v", pair)
			}
			out[key] = value
		}
	}
	return out, nil
}
