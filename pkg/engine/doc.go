// Package engine defines the contract every processing backend satisfies.
// An Engine transforms text into bytes and enumerates the resources and
// languages it supports. Engines register a Factory by name in a Registry;
// the orchestrator picks one from configuration at construction time.
// Options resolution (call option, then engine setting, then fixed
// default) is exposed as Resolve so every engine applies the same order.
package engine
