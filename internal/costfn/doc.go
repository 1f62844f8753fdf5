// Package costfn resolves a cost-function identifier into a callable of the
// form cost(macs, bitwidth_a, bitwidth_b).
//
// An identifier is a Spec: either a Preset naming a built-in or a function
// registered from configuration, or a Custom callable supplied by Go code.
// Specs are resolved once, before any cost is computed, so an unknown name
// fails the run before the report is even read.
package costfn
