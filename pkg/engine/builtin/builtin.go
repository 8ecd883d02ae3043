// Package builtin assembles the engine registry shipped with procunit.
package builtin

import (
	"github.com/rhuss/procunit/pkg/engine"
	"github.com/rhuss/procunit/pkg/engine/echo"
	"github.com/rhuss/procunit/pkg/engine/reference"
	"github.com/rhuss/procunit/pkg/engine/remote"
)

// Registry returns a new registry holding the default, echo, and remote
// engines.
func Registry() *engine.Registry {
	r := engine.NewRegistry()
	r.MustRegister(reference.Name, reference.Factory)
	r.MustRegister(echo.Name, echo.Factory)
	r.MustRegister(remote.Name, remote.Factory)
	return r
}
