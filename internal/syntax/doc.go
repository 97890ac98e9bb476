// Package syntax turns RPL source text into a positioned token stream.
//
// The scanner recognises quoted strings, number and range chains
// (`12`, `$1f`, `1-5`, `0*4`, `a-z:0:$10`), keys (`name:`), flow
// characters (`{ } [ ] ,`), references (`@Struct.key[0]`) and bare
// literals. Comments (`# ...`) and whitespace are discarded.
//
// Every token records the 1-based line and column it started at so later
// phases can report errors against the original source.
package syntax
