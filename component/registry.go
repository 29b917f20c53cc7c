package component

import (
	"sort"
	"sync"
)

// SourceConstructor builds a source from its rendered config.
type SourceConstructor func(cfg Config) (Source, error)

// ProcessorConstructor builds a processor from its rendered config.
type ProcessorConstructor func(cfg Config) (Processor, error)

// EndpointConstructor builds an endpoint from its rendered config.
type EndpointConstructor func(cfg Config) (Endpoint, error)

var (
	mu         sync.RWMutex
	sources    = map[string]SourceConstructor{}
	processors = map[string]ProcessorConstructor{}
	endpoints  = map[string]EndpointConstructor{}
)

// RegisterSource binds a snake-case tag to a source constructor. Later
// registrations replace earlier ones, so user components may override
// built-ins.
func RegisterSource(tag string, ctor SourceConstructor) {
	mu.Lock()
	defer mu.Unlock()
	sources[tag] = ctor
}

// RegisterProcessor binds a snake-case tag to a processor constructor.
func RegisterProcessor(tag string, ctor ProcessorConstructor) {
	mu.Lock()
	defer mu.Unlock()
	processors[tag] = ctor
}

// RegisterEndpoint binds a snake-case tag to an endpoint constructor.
func RegisterEndpoint(tag string, ctor EndpointConstructor) {
	mu.Lock()
	defer mu.Unlock()
	endpoints[tag] = ctor
}

func sourceFor(tag string) (SourceConstructor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := sources[tag]
	return c, ok
}

func processorFor(tag string) (ProcessorConstructor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := processors[tag]
	return c, ok
}

func endpointFor(tag string) (EndpointConstructor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := endpoints[tag]
	return c, ok
}

// Registered reports whether a tag is known for the given kind.
func Registered(kind, tag string) bool {
	switch kind {
	case "source":
		_, ok := sourceFor(tag)
		return ok
	case "processor":
		_, ok := processorFor(tag)
		return ok
	case "endpoint":
		_, ok := endpointFor(tag)
		return ok
	}
	return false
}

// RegisteredTags returns the sorted tags known for a kind. Used by the CLI
// to report what is available.
func RegisteredTags(kind string) []string {
	mu.RLock()
	defer mu.RUnlock()
	var tags []string
	switch kind {
	case "source":
		for t := range sources {
			tags = append(tags, t)
		}
	case "processor":
		for t := range processors {
			tags = append(tags, t)
		}
	case "endpoint":
		for t := range endpoints {
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
