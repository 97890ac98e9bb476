package refpath

// TargetKind tells how the target of a path is found.
type TargetKind uint8

const (
	Named  TargetKind = iota // a struct looked up by its global name
	This                     // the struct the reference was written in
	Parent                   // Up levels above the originating struct
	Back                     // Back caller frames up, then Up parent levels
)

// Path is the structured form of a reference path.
type Path struct {
	Kind    TargetKind
	Name    string // Named only
	Up      int
	Back    int
	Key     string // empty selects the struct's basic value
	Indices []int
}

// IsRelative reports whether the target depends on the context the
// reference is resolved in.
func (p *Path) IsRelative() bool {
	return p.Kind != Named
}

// HasKey reports whether the path selects a key.
func (p *Path) HasKey() bool {
	return p.Key != ""
}
