package config

import "github.com/zclconf/go-cty/cty"

// Project is the unified representation of a project file.
type Project struct {
	// ROM is the container file.
	ROM string
	// RPL lists the description files or directories holding them.
	RPL []string
	// Folder receives the external files.
	Folder string
	// Output is where an import saves the container. Empty means ROM.
	Output string
	// Form is the default external form.
	Form string
	// Defines are named constants added to the registry before parsing.
	Defines map[string]cty.Value
}

// Merge returns p with every non-empty field of over applied on top.
// Defines are merged key by key.
func (p *Project) Merge(over *Project) *Project {
	out := *p
	if over == nil {
		return &out
	}
	if over.ROM != "" {
		out.ROM = over.ROM
	}
	if len(over.RPL) > 0 {
		out.RPL = over.RPL
	}
	if over.Folder != "" {
		out.Folder = over.Folder
	}
	if over.Output != "" {
		out.Output = over.Output
	}
	if over.Form != "" {
		out.Form = over.Form
	}
	if len(over.Defines) > 0 {
		defs := make(map[string]cty.Value, len(p.Defines)+len(over.Defines))
		for k, v := range p.Defines {
			defs[k] = v
		}
		for k, v := range over.Defines {
			defs[k] = v
		}
		out.Defines = defs
	}
	return &out
}
