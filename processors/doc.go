// Package processors provides the built-in processor components: validator,
// rename, and filter. Each registers itself with the component registry
// under its snake-case tag.
package processors
