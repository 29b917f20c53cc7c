// Package sources provides the built-in source components: csv, postgres,
// and inline. Each registers itself with the component registry under its
// snake-case tag; user components may re-register a tag to override.
package sources
