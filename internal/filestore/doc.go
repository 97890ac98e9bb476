// Package filestore buffers the external files written and read during an
// export or import run.
//
// Several structs may name the same file. Each one claims a section of it
// in declaration order; a file with a single claim holds a bare record, a
// file with more holds one named section per claim. Reads are lazy and
// parse each file once. Writes are buffered and Flush writes every file
// exactly once, so structs that share a file never truncate each other.
package filestore
