// Package selector turns --select and --exclude expressions into the final
// ordered list of pipelines to run. Atoms compose a name or tag:t body with
// optional upstream (+x) and downstream (x+) closure markers; atoms in one
// expression union, and exclusions subtract from the include set. The
// result is always returned in the dependency graph's topological order.
package selector
