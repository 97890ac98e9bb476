package value

import "fmt"

// Source records where a stored value came from.
type Source uint8

const (
	Rigid      Source = iota // fixed by the struct type itself
	Implied                  // derived from surrounding syntax
	Typed                    // produced by type coercion
	Set                      // declared in source text
	Sourced                  // read from a container or external file
	Calculated               // computed by the format engine
	Defaulted                // registered default
	Inherited                // found on an ancestor by bubbling
)

var sourceNames = [...]string{
	Rigid:      "rigid",
	Implied:    "implied",
	Typed:      "typed",
	Set:        "set",
	Sourced:    "sourced",
	Calculated: "calculated",
	Defaulted:  "defaulted",
	Inherited:  "inherited",
}

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("Source(%d)", s)
}

// Slot is a stored value with its provenance and the stamp of its last
// change.
type Slot struct {
	Value  Value
	Source Source
	Stamp  uint64
}
