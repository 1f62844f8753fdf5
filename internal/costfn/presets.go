package costfn

const (
	// ACE is the bit-accurate energy model: macs * a * b.
	ACE = "ACE"
	// MACS ignores precision and counts operations only.
	MACS = "MACS"
)

var presets = []registered{
	{
		entry: Entry{Name: ACE, Description: "bit-accurate energy: macs * bitwidth_a * bitwidth_b", Builtin: true},
		fn: func(macs int64, a, b int) (float64, error) {
			return float64(macs) * float64(a) * float64(b), nil
		},
	},
	{
		entry: Entry{Name: MACS, Description: "operation count, insensitive to precision", Builtin: true},
		fn: func(macs int64, _, _ int) (float64, error) {
			return float64(macs), nil
		},
	},
}

func presetNames() []string {
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.entry.Name)
	}
	return names
}
