// Package registry provides the central "glue" between RPL documents and the
// Go code that gives them meaning.
//
// The Registry maps the names used in RPL source (struct types such as
// "Data", value types such as "number") to their definitions: allowed keys
// with their type grammars and defaults, allowed children, base types for
// key inheritance, and the Go constructors that implement a struct type's
// behaviour.
//
// During application startup every compiled-in Module registers into the
// registry, which is then validated so that grammars, defaults and type
// relations are known to be consistent before any document is parsed.
package registry
