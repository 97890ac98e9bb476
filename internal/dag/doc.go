// Package dag holds a small directed graph of named quantities and orders
// them so that every node comes after the nodes it depends on.
//
// The format engine uses it to plan the evaluation of field offsets, sizes
// and values, whose dependencies are only known after the field list has
// been compiled.
package dag
