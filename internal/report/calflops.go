package report

import (
	"context"
	"regexp"
	"strings"
)

// CalflopsName names the layout with "<v> <unit> = <pct>% <Metric>" fields.
const CalflopsName = "calflops"

var (
	// calflopsFieldPattern matches one "<value> <unit>? = ..." summary field.
	calflopsFieldPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([A-Za-z]*)\s*=`)
	calflopsSignature    = regexp.MustCompile(`\d\s*[A-Za-z]*\s*=\s*\d+(?:\.\d+)?%\s*Params`)
	calflopsFieldNames   = [...]string{"params", "macs", "flops"}
)

// Calflops is the layout whose summaries read
//
//	9.41 K = 0.04% Params, 118.01 MMACs = 2.87% MACs, 237.03 MFLOPS = 2.87% FLOPs
//
// either alone on a line or inside a declaration's argument list, ahead of the
// layer's own arguments.
type Calflops struct{}

func (Calflops) Name() string    { return CalflopsName }
func (Calflops) IndentUnit() int { return DefaultIndentUnit }

func (Calflops) HasSummary(line string) bool {
	return strings.Contains(line, "Params")
}

func (Calflops) Summary(ctx context.Context, line string) (Summary, error) {
	body := strings.TrimSpace(line)
	if loc := declarationPattern.FindStringIndex(body); loc != nil {
		body = body[loc[1]:]
		open := strings.Index(body, "(")
		if open < 0 {
			return Summary{}, malformedf("declaration has no argument list")
		}
		body = strings.TrimSuffix(strings.TrimSpace(body[open+1:]), ")")
	}

	segments := strings.Split(body, ",")
	if len(segments) < len(calflopsFieldNames) {
		return Summary{}, malformedf("expected %d comma-delimited fields, found %d", len(calflopsFieldNames), len(segments))
	}
	if len(segments) > len(calflopsFieldNames) && calflopsFieldPattern.MatchString(segments[len(calflopsFieldNames)]) {
		return Summary{}, malformedf("expected %d comma-delimited fields, found an extra %q", len(calflopsFieldNames), strings.TrimSpace(segments[len(calflopsFieldNames)]))
	}

	var values [len(calflopsFieldNames)]int64
	for i, field := range calflopsFieldNames {
		m := calflopsFieldPattern.FindStringSubmatch(segments[i])
		if m == nil {
			return Summary{}, malformedf("%s field %q is not of the form '<value> <unit> = ...'", field, strings.TrimSpace(segments[i]))
		}
		n, err := quantity(ctx, field, m[1], m[2])
		if err != nil {
			return Summary{}, err
		}
		values[i] = n
	}

	return Summary{
		Params:   values[0],
		MACs:     values[1],
		FLOPs:    values[2],
		Bitwidth: parseBitwidth(line),
	}, nil
}
