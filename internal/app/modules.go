package app

import (
	"github.com/specialistvlad/rplkit/internal/registry"
	"github.com/specialistvlad/rplkit/modules/bin"
	"github.com/specialistvlad/rplkit/modules/std"
)

// coreModules is the definitive list of all modules that are compiled into
// the rplkit binary.
var coreModules = []registry.Module{
	&std.Module{},
	&bin.Module{},
}
