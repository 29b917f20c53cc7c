// Package dag provides the directed-acyclic-graph operations behind dft's
// two dependency levels: the inter-pipeline graph (nodes are pipeline names)
// and each pipeline's intra-step graph (nodes are step ids).
//
// Ordering is deterministic: Kahn levels with lexicographic sorting inside
// each level, so two runs over the same project produce identical plans.
package dag
