package selector

import (
	"fmt"
	"strings"

	"github.com/kbukum/dft/dag"
	"github.com/kbukum/dft/errors"
	"github.com/kbukum/dft/project"
)

// Resolve evaluates selects and excludes over the project's pipelines and
// their dependency graph. An empty selects means "all pipelines". The
// returned names follow the graph's topological order, not the order atoms
// were written.
func Resolve(selects, excludes []string, pipelines []*project.Pipeline, g *dag.Graph) ([]string, error) {
	byName := make(map[string]*project.Pipeline, len(pipelines))
	for _, pl := range pipelines {
		byName[pl.Name] = pl
	}

	include := map[string]bool{}
	if len(selects) == 0 {
		for name := range byName {
			include[name] = true
		}
	} else {
		for _, expr := range selects {
			set, err := evalExpression(expr, byName, g)
			if err != nil {
				return nil, err
			}
			for name := range set {
				include[name] = true
			}
		}
	}

	for _, expr := range excludes {
		set, err := evalExpression(expr, byName, g)
		if err != nil {
			return nil, err
		}
		for name := range set {
			delete(include, name)
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range order {
		if include[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

func evalExpression(expr string, byName map[string]*project.Pipeline, g *dag.Graph) (map[string]bool, error) {
	out := map[string]bool{}
	for _, atom := range strings.Split(expr, ",") {
		atom = strings.TrimSpace(atom)
		if atom == "" {
			return nil, errors.Selector(fmt.Sprintf("empty atom in %q", expr))
		}
		set, err := evalAtom(atom, byName, g)
		if err != nil {
			return nil, err
		}
		for name := range set {
			out[name] = true
		}
	}
	return out, nil
}

func evalAtom(atom string, byName map[string]*project.Pipeline, g *dag.Graph) (map[string]bool, error) {
	body := atom
	upstream := strings.HasPrefix(body, "+")
	if upstream {
		body = body[1:]
	}
	downstream := strings.HasSuffix(body, "+")
	if downstream {
		body = body[:len(body)-1]
	}
	if body == "" || strings.ContainsAny(body, "+ ") {
		return nil, errors.Selector(fmt.Sprintf("malformed selector atom %q", atom))
	}

	var members []string
	if tag, ok := strings.CutPrefix(body, "tag:"); ok {
		if tag == "" {
			return nil, errors.Selector(fmt.Sprintf("malformed selector atom %q", atom))
		}
		for name, pl := range byName {
			if pl.HasTag(tag) {
				members = append(members, name)
			}
		}
		if len(members) == 0 {
			return nil, errors.Selector(fmt.Sprintf("no pipeline has tag %q", tag))
		}
	} else {
		if _, ok := byName[body]; !ok {
			return nil, errors.Selector(fmt.Sprintf("unknown pipeline %q", body))
		}
		members = []string{body}
	}

	set := map[string]bool{}
	for _, name := range members {
		set[name] = true
		if upstream {
			for _, a := range g.Ancestors(name) {
				set[a] = true
			}
		}
		if downstream {
			for _, d := range g.Descendants(name) {
				set[d] = true
			}
		}
	}
	return set, nil
}
