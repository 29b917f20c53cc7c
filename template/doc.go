// Package template evaluates {{ ... }} expressions embedded in otherwise
// literal strings, over a layered variable context.
//
// Layers from lowest to highest precedence: built-in helpers, project
// variables, pipeline variables, batch variables, command-line overrides.
// Lookup walks layers from highest to lowest. Rendering is pure and
// idempotent; strings without a {{ marker are returned verbatim.
//
// The expression language supports variable references (var("name") or a
// bare identifier), environment reads (env_var("NAME", default)), pipeline
// state reads (state.get("key", default)), the date helpers today(),
// yesterday(), now() and days_ago(n), timestamp arithmetic with
// timedelta(hours=..., days=..., minutes=...), and the timestamp methods
// .strftime(fmt) and .isoformat().
package template
