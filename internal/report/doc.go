// Package report turns the text listing printed by a FLOPS/parameter profiler
// into a module.Tree.
//
// The listing is not a fixed grammar. Two profiler families are understood
// (see Layout): one prints "<v> <unit> = <pct>% Params, ..." summaries with a
// FLOP column, the other "<v> <unit>, <pct>% Params, ..." without one. In both,
// a module's numeric summary sits either on its declaration line or on the
// line right after it, nesting is encoded by two-space indentation, and
// operand precision appears as "<n>bit" on quantizer pseudo-modules.
//
// Parsing is heuristic by necessity. The one hard failure is a summary that
// does not split into the fields its layout requires: that means the format
// changed and guessing would silently corrupt every cost computed from it.
package report
