package report

import (
	"context"
	"regexp"
	"strings"
)

// PtflopsName names the layout with "<v> <unit>, <pct>% <Metric>" pairs.
const PtflopsName = "ptflops"

var (
	ptflopsParamsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([A-Za-z]*)\s*,\s*\d+(?:\.\d+)?%\s*Params`)
	ptflopsMACsPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([A-Za-z]*)\s*,\s*\d+(?:\.\d+)?%\s*MACs`)
	ptflopsSignature     = ptflopsParamsPattern
)

// Ptflops is the layout whose summaries read
//
//	9.41 k, 0.037% Params, 118.01 MMac, 2.863% MACs,
//
// with no FLOP column.
type Ptflops struct{}

func (Ptflops) Name() string    { return PtflopsName }
func (Ptflops) IndentUnit() int { return DefaultIndentUnit }

func (Ptflops) HasSummary(line string) bool {
	return strings.Contains(line, "Params")
}

func (Ptflops) Summary(ctx context.Context, line string) (Summary, error) {
	params := ptflopsParamsPattern.FindStringSubmatch(line)
	if params == nil {
		return Summary{}, malformedf("no '<value> <unit>, <pct>%% Params' pair")
	}
	macs := ptflopsMACsPattern.FindStringSubmatch(line)
	if macs == nil {
		return Summary{}, malformedf("no '<value> <unit>, <pct>%% MACs' pair")
	}

	p, err := quantity(ctx, "params", params[1], params[2])
	if err != nil {
		return Summary{}, err
	}
	m, err := quantity(ctx, "macs", macs[1], macs[2])
	if err != nil {
		return Summary{}, err
	}

	return Summary{Params: p, MACs: m, Bitwidth: parseBitwidth(line)}, nil
}
