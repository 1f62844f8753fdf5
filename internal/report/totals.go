package report

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/specialistvlad/quantcost/internal/ctxlog"
	"github.com/specialistvlad/quantcost/internal/units"
)

// Totals are the aggregate counts a profiler prints outside the listing.
type Totals struct {
	MACs   int64 `json:"macs" yaml:"macs"`
	Params int64 `json:"params" yaml:"params"`
	FLOPs  int64 `json:"flops" yaml:"flops"`
}

type totalsField int

const (
	fieldMACs totalsField = iota
	fieldParams
	fieldFLOPs
)

var totalsPatterns = []struct {
	field   totalsField
	pattern *regexp.Regexp
}{
	{fieldMACs, regexp.MustCompile(`^\s*(?:Total MACs|fwd MACs|Computational complexity)\s*:\s*(\d+(?:\.\d+)?)\s*([A-Za-z]*)\s*$`)},
	{fieldParams, regexp.MustCompile(`^\s*(?:Total Training Params|Params|Number of parameters)\s*:\s*(\d+(?:\.\d+)?)\s*([A-Za-z]*)\s*$`)},
	{fieldFLOPs, regexp.MustCompile(`^\s*(?:Total FLOPs|fwd FLOPs)\s*:\s*(\d+(?:\.\d+)?)\s*([A-Za-z]*)\s*$`)},
}

// ScanTotals looks for the profiler's aggregate lines such as
// "fwd MACs: 118.01 MMACs" or "Computational complexity: 4.12 GMac". The
// first match of each kind wins. ok is false when no MAC or parameter total
// was found.
func ScanTotals(ctx context.Context, lines []string) (t Totals, ok bool) {
	logger := ctxlog.FromContext(ctx)
	var seen [3]bool

	for _, line := range lines {
		if !strings.Contains(line, ":") {
			continue
		}
		for _, p := range totalsPatterns {
			if seen[p.field] {
				continue
			}
			m := p.pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			n, err := units.ParseQuantity(m[1] + " " + m[2])
			if err != nil {
				if !errors.Is(err, units.ErrUnrecognizedUnit) {
					continue
				}
				logger.Warn("Unrecognized unit in profiler totals.", "line", strings.TrimSpace(line), "error", err)
			}
			seen[p.field] = true
			switch p.field {
			case fieldMACs:
				t.MACs = n
			case fieldParams:
				t.Params = n
			case fieldFLOPs:
				t.FLOPs = n
			}
			break
		}
	}
	return t, seen[fieldMACs] || seen[fieldParams]
}
