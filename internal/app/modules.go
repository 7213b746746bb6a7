package app

import (
	"github.com/vk/dashwire/internal/registry"
	"github.com/vk/dashwire/modules/barchart"
	"github.com/vk/dashwire/modules/textpanel"
)

// coreModules is the definitive list of all handler modules that are
// compiled into the dashwire binary.
var coreModules = []registry.Module{
	&barchart.Module{},
	&textpanel.Module{},
}
