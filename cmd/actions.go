package cmd

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/earnings-cli/internal/assistant"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the aggregations questions can be routed to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tablewriter.NewWriter(cmd.OutOrStdout())
		w.SetHeader([]string{"action", "description"})
		w.SetAutoFormatHeaders(false)
		w.SetAutoWrapText(false)
		w.SetBorder(false)
		w.SetColumnSeparator(" ")
		w.SetHeaderLine(false)
		w.SetAlignment(tablewriter.ALIGN_LEFT)
		w.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		for _, spec := range assistant.Actions() {
			w.Append([]string{string(spec.Name), spec.Description})
		}
		w.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
