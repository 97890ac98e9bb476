// Package rpl builds and queries RPL documents.
//
// Parsing turns a token stream into a tree of Structs owned by a Document.
// Each struct stores its declared keys as provenance-tagged slots; keys that
// are absent are looked up on the parent chain ("bubbling") before falling
// back to the registered default. Reference values are kept unresolved in
// the tree and followed at read time through a caller stack, which also
// detects reference cycles.
package rpl
