package profiler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/specialistvlad/quantcost/internal/ctxlog"
	"github.com/specialistvlad/quantcost/internal/report"
)

// maxLineSize bounds a single report line. Quantizer lines print calibration
// tensors inline and can get long.
const maxLineSize = 1 << 20

// Capture is one profiler run's report.
type Capture struct {
	// Source names where the report came from, for logs and output.
	Source string
	Lines  []string
	// Totals are the aggregates stated in the report, valid when HasTotals.
	Totals    report.Totals
	HasTotals bool
}

// Profiler produces a report for a model fed an input of the given shape.
type Profiler interface {
	Profile(ctx context.Context, shape []int) (*Capture, error)
}

// ReadLines splits r into lines without their terminators.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return lines, nil
}

func newCapture(ctx context.Context, source string, lines []string) *Capture {
	c := &Capture{Source: source, Lines: lines}
	c.Totals, c.HasTotals = report.ScanTotals(ctx, lines)
	ctxlog.FromContext(ctx).Debug("Captured profiler report.", "source", source, "lines", len(lines), "has_totals", c.HasTotals)
	return c
}

// FormatShape renders a shape as "1,3,224,224".
func FormatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// ParseShape reads "1,3,224,224", "1x3x224x224" or "(1, 3, 224, 224)".
func ParseShape(s string) ([]int, error) {
	trimmed := strings.Trim(strings.TrimSpace(s), "()[]")
	if trimmed == "" {
		return nil, nil
	}
	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == 'x' || r == 'X' || r == ' '
	})
	shape := make([]int, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid input shape %q: dimension %q is not a positive integer", s, f)
		}
		shape = append(shape, d)
	}
	return shape, nil
}
