package cli

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/specialistvlad/quantcost/internal/app"
)

// BuildPresetsCmd returns the command listing the available cost functions.
func BuildPresetsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the cost functions available to --cost-function",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := app.NewRegistry(root.model.CostFunctions)
			if err != nil {
				return err
			}

			var data [][]string
			for _, e := range registry.Entries() {
				source := "config"
				if e.Builtin {
					source = "builtin"
				}
				data = append(data, []string{e.Name, source, e.Description})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"NAME", "SOURCE", "DESCRIPTION"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
}
