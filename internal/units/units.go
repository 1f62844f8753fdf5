// Package units converts the unit-suffixed quantities printed by model
// profilers ("9.41 K", "118.01 MMACs", "237 MFLOPS") into plain integer counts.
//
// Unit tokens are matched case-insensitively. A parameter count carries a bare
// magnitude prefix (K, M, G, T), a MAC count carries the prefix followed by
// "Mac"/"MACs", and a FLOP count carries it followed by "FLOP"/"FLOPS". An
// unknown token is counted with multiplier 1 and reported through
// ErrUnrecognizedUnit so the caller can log it and keep going: profiler output
// drifts between versions and an approximate count is more useful than a
// failed run.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	One      = 1
	Thousand = One * 1000
	Million  = Thousand * 1000
	Billion  = Million * 1000
	Trillion = Billion * 1000
)

// ErrUnrecognizedUnit marks a unit token outside the known vocabulary. It is
// never fatal: the accompanying count was computed with multiplier 1.
var ErrUnrecognizedUnit = errors.New("unrecognized unit")

// ErrInvalidQuantity is returned when a quantity has no parsable mantissa.
var ErrInvalidQuantity = errors.New("invalid quantity")

// UnitError reports the unit token that fell back to multiplier 1.
type UnitError struct {
	Unit string
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s %q, counted with multiplier 1", ErrUnrecognizedUnit, e.Unit)
}

// Is lets errors.Is match UnitError against ErrUnrecognizedUnit.
func (e *UnitError) Is(target error) bool {
	return target == ErrUnrecognizedUnit
}

// rateSuffixes are stripped before the magnitude prefix is looked up. Longer
// spellings come first so "macs" is not cut down to "s".
var rateSuffixes = []string{"flops", "flop", "macs", "mac"}

// Multiplier returns the factor for a unit token and whether the token was
// recognized. The empty token means "no unit" and maps to 1.
func Multiplier(unit string) (float64, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	for _, suffix := range rateSuffixes {
		if strings.HasSuffix(u, suffix) {
			u = strings.TrimSuffix(u, suffix)
			break
		}
	}

	switch u {
	case "":
		return One, true
	case "k":
		return Thousand, true
	case "m":
		return Million, true
	case "g", "b":
		return Billion, true
	case "t":
		return Trillion, true
	default:
		return One, false
	}
}

// Count returns round(mantissa * multiplier(unit)). For an unknown unit the
// count is still returned, together with a *UnitError. A negative count, or
// one too large for an int64, is ErrInvalidQuantity.
func Count(mantissa float64, unit string) (int64, error) {
	m, ok := Multiplier(unit)
	f := math.Round(mantissa * m)
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v %s is out of range for a count", ErrInvalidQuantity, mantissa, unit)
	}
	n := int64(f)
	if !ok {
		return n, &UnitError{Unit: unit}
	}
	return n, nil
}

// ParseQuantity parses a "<value> <unit>?" pair such as "1.2 K" or "50".
// Errors other than ErrUnrecognizedUnit mean no count could be produced.
func ParseQuantity(s string) (int64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}

	mantissa, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidQuantity, s, err)
	}

	unit := ""
	if len(fields) == 2 {
		unit = fields[1]
	}
	return Count(mantissa, unit)
}

// Human renders a count with a K/M/G/T suffix for display.
func Human(n int64) string {
	switch {
	case n >= Trillion:
		return decimalPlace(float64(n)/Trillion) + "T"
	case n >= Billion:
		return decimalPlace(float64(n)/Billion) + "G"
	case n >= Million:
		return decimalPlace(float64(n)/Million) + "M"
	case n >= Thousand:
		return decimalPlace(float64(n)/Thousand) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

func decimalPlace(number float64) string {
	switch {
	case number >= 100:
		return fmt.Sprintf("%.0f", number)
	case number >= 10:
		return fmt.Sprintf("%.1f", number)
	default:
		return fmt.Sprintf("%.2f", number)
	}
}
