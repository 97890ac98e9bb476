// Package format implements the Format and Data struct kinds: ordered
// lists of field declarations that describe where values live inside a
// binary container.
//
// A field is declared as `[type, size, modifiers...]`. Before a pass runs,
// the fields are compiled into descriptors and the quantities they depend
// on (offset, byte length and value of every field) are placed in a
// dependency graph. The graph is evaluated in topological order, so a
// field's size may be stored in a later field, and a true cycle is
// reported instead of looping.
//
// Export reads the container and produces an extern.Record per struct.
// Import reads the record back, packs every field, computes the fields
// that hold lengths, counts and offsets of other fields, and writes the
// staged bytes at their final offsets.
package format
