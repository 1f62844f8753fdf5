package result

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/quantcost/internal/units"
)

// Format selects an encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTable:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q: must be %q, %q or %q", s, FormatJSON, FormatYAML, FormatTable)
	}
}

// Write encodes results. A single result is written as one document, several
// as a JSON array, a YAML sequence, or consecutive tables.
func Write(w io.Writer, f Format, results ...*Result) error {
	var doc any = results
	if len(results) == 1 {
		doc = results[0]
	}

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatTable:
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeTable(w, r)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func writeTable(w io.Writer, r *Result) {
	if r.Source != "" {
		fmt.Fprintf(w, "%s\n", r.Source)
	}

	var data [][]string
	r.Model.Walk(func(n *Node) {
		data = append(data, []string{
			strings.Repeat("  ", n.Depth) + n.Name,
			units.Human(n.Params),
			units.Human(n.MACs),
			bits(n.InputBitwidth, n.Bitwidth, r.DefaultBitwidth),
			bits(n.WeightBitwidth, n.Bitwidth, r.DefaultBitwidth),
			strconv.FormatFloat(n.Cost, 'f', -1, 64),
		})
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"MODULE", "PARAMS", "MACS", "IN BITS", "W BITS", "COST"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	fmt.Fprintf(w, "\ntotal cost: %s (%s, default %d bits)\n",
		strconv.FormatFloat(r.TotalCost, 'f', -1, 64), r.CostFunction, r.DefaultBitwidth)
	fmt.Fprintf(w, "profiler totals: %s MACs, %s params\n", units.Human(r.Totals.MACs), units.Human(r.Totals.Params))
	for _, n := range r.Notices {
		fmt.Fprintf(w, "note: %s\n", n)
	}
}

// bits shows a module's operand precision. Quantizer nodes show their own
// bitwidth, other modules fall back to the default.
func bits(operand, own *int, def int) string {
	switch {
	case operand != nil:
		return strconv.Itoa(*operand)
	case own != nil:
		return strconv.Itoa(*own)
	default:
		return strconv.Itoa(def)
	}
}
