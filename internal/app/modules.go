package app

import (
	"github.com/specialistvlad/buildgrid/internal/registry"
	"github.com/specialistvlad/buildgrid/modules/filegroup"
	"github.com/specialistvlad/buildgrid/modules/python"
)

// coreModules is the definitive list of all rule modules that are compiled
// into the buildgrid binary.
var coreModules = []registry.Module{
	&python.Module{},
	&filegroup.Module{},
}
