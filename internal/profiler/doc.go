// Package profiler captures the text report of a FLOPS/parameter profiler.
//
// The profiler itself is an external program. A Profiler hands back its
// report as lines together with whatever aggregate totals the report states.
// Output is always captured into a per-call buffer, so concurrent captures
// never share a stream.
package profiler
