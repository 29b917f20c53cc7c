// Package component defines the contract between the orchestration core
// and the pluggable sources, processors, and endpoints, plus the registries
// and factory that turn a step declaration into a live instance.
//
// Built-in components register themselves in init; user components do the
// same from their own Go packages via RegisterSource, RegisterProcessor,
// and RegisterEndpoint.
package component
