// Package module holds the module hierarchy reconstructed from a profiler
// report.
//
// The hierarchy is stored as an arena: every Module lives in one slice owned
// by the Tree and refers to its parent and children by index. The parent index
// is a navigational link only, used to replay cost corrections upward; the
// children slice is the owning edge and fixes iteration order (the order in
// which modules appeared in the report).
//
// A Tree is built once by the report parser, annotated in place by the quant
// package, and mutated by the propagation engine through the Cost field only.
// It is not safe for concurrent mutation; each estimation builds its own.
package module
