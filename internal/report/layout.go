package report

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/quantcost/internal/ctxlog"
	"github.com/specialistvlad/quantcost/internal/units"
)

// DefaultIndentUnit is the number of spaces per nesting level.
const DefaultIndentUnit = 2

// LayoutAuto selects the layout by inspecting the report.
const LayoutAuto = "auto"

// Summary is the numeric part of one module's report entry.
type Summary struct {
	Params   int64
	MACs     int64
	FLOPs    int64
	Bitwidth *int
}

// Layout is one profiler family's text grammar.
type Layout interface {
	// Name identifies the layout in configuration and output.
	Name() string
	// IndentUnit is the number of leading spaces per depth level.
	IndentUnit() int
	// HasSummary reports whether the line carries a numeric summary.
	HasSummary(line string) bool
	// Summary extracts the numeric summary from a line for which HasSummary
	// is true. A line that cannot be decomposed yields ErrMalformedReport.
	Summary(ctx context.Context, line string) (Summary, error)
}

var (
	// declarationPattern matches "(name):" at the start of a module line.
	declarationPattern = regexp.MustCompile(`^\s*\(([^()\s]+)\):`)
	// rootPattern matches the bare "<ModelName>(" line opening a listing.
	rootPattern = regexp.MustCompile(`^([A-Za-z_][\w.]*)\($`)
	// bitwidthPattern matches a "<digits>bit" token anywhere on a line.
	bitwidthPattern = regexp.MustCompile(`(\d+)bit`)
)

// Layouts lists the supported layouts by name.
func Layouts() []Layout {
	return []Layout{Calflops{}, Ptflops{}}
}

// LayoutByName returns the named layout. Auto or an empty name returns nil,
// asking the caller to use DetectLayout.
func LayoutByName(name string) (Layout, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == LayoutAuto {
		return nil, nil
	}
	for _, l := range Layouts() {
		if l.Name() == n {
			return l, nil
		}
	}
	return nil, fmt.Errorf("unknown report layout %q: must be %q, %q or %q", name, LayoutAuto, CalflopsName, PtflopsName)
}

// DetectLayout picks the layout whose summary shape appears first in the
// lines, defaulting to calflops.
func DetectLayout(ctx context.Context, lines []string) Layout {
	logger := ctxlog.FromContext(ctx)
	for i, line := range lines {
		switch {
		case calflopsSignature.MatchString(line):
			logger.Debug("Detected report layout.", "layout", CalflopsName, "line", i+1)
			return Calflops{}
		case ptflopsSignature.MatchString(line):
			logger.Debug("Detected report layout.", "layout", PtflopsName, "line", i+1)
			return Ptflops{}
		}
	}
	logger.Debug("No layout signature found, assuming default.", "layout", CalflopsName)
	return Calflops{}
}

// declaration extracts the module name from a "(name): Type(...)" line.
func declaration(line string) (string, bool) {
	m := declarationPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// RootName returns the model name from a "<Name>(" opening line.
func RootName(line string) (string, bool) {
	m := rootPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// parseBitwidth returns the first "<n>bit" token on the line, if any.
func parseBitwidth(line string) *int {
	m := bitwidthPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// indentation returns the number of leading space or tab characters.
func indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// quantity converts a captured mantissa and unit into a count. An unknown unit
// is logged and counted with multiplier 1.
func quantity(ctx context.Context, field, mantissa, unit string) (int64, error) {
	v, err := strconv.ParseFloat(mantissa, 64)
	if err != nil {
		return 0, malformedf("%s value %q is not a number", field, mantissa)
	}

	n, err := units.Count(v, unit)
	if err != nil {
		if !errors.Is(err, units.ErrUnrecognizedUnit) {
			return 0, malformedf("%s: %v", field, err)
		}
		ctxlog.FromContext(ctx).Warn("Unrecognized unit, counting with multiplier 1.", "field", field, "unit", unit, "value", v)
	}
	return n, nil
}
